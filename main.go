package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron"
	"github.com/sgaunet/mailsend/internal/app"
	"github.com/sgaunet/mailsend/internal/configapp"
	"github.com/sgaunet/mailsend/internal/logger"
	"github.com/sirupsen/logrus"
)

var version string = "development"

var errNoRecipient = errors.New("no recipient, use -to")

func printVersion() {
	fmt.Println(version)
}

func checkErrorAndExitIfErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}
}

// splitList turns "a@x.com, b@x.com" into its trimmed, non-empty items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func main() {
	var vOption, dryRun bool
	var configFilename, to, cc, subject, body, bodyFile, cronSpec string
	var configApp configapp.AppConfig
	var err error

	// Treat args
	flag.BoolVar(&vOption, "v", false, "Get version")
	flag.StringVar(&configFilename, "c", "", "Configuration file (YAML)")
	flag.StringVar(&to, "to", "", "Recipient address")
	flag.StringVar(&cc, "cc", "", "Comma separated CC addresses")
	flag.StringVar(&subject, "s", "", "Subject")
	flag.StringVar(&body, "b", "", "Plain text body")
	flag.StringVar(&bodyFile, "f", "", "Read the plain text body from this file")
	flag.BoolVar(&dryRun, "dryrun", false, "Log the email instead of sending it")
	flag.StringVar(&cronSpec, "cron", "", "Send the email on this cron schedule instead of once")
	flag.Parse()

	if vOption {
		printVersion()
		os.Exit(0)
	}

	if configFilename != "" {
		configApp, err = configapp.ReadYamlCnxFile(configFilename)
		checkErrorAndExitIfErr(err)
	}
	checkErrorAndExitIfErr(configApp.LoadEnv(os.Getenv))
	if dryRun {
		configApp.Transport = configapp.TransportLog
	}

	appLog := logger.NewLogger(configApp.DebugLevel)
	appLog.Debugln("appLog.Level=", appLog.Level)

	if to == "" {
		checkErrorAndExitIfErr(errNoRecipient)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mailApp, err := app.New(ctx, configApp, appLog)
	checkErrorAndExitIfErr(err)
	if err := mailApp.LogIdentity(ctx); err != nil {
		appLog.Warnln("cannot get AWS identity:", err.Error())
	}

	req := app.Request{
		To:      to,
		Cc:      splitList(cc),
		Subject: subject,
		Body:    body,
	}
	send := func() error {
		if bodyFile != "" {
			return mailApp.SendFile(ctx, req, bodyFile)
		}
		return mailApp.Send(ctx, req)
	}

	if cronSpec == "" {
		checkErrorAndExitIfErr(send())
		appLog.WithField("to", to).Infoln("mail sent")
		return
	}

	c := cron.New()
	err = c.AddFunc(cronSpec, func() {
		if err := send(); err != nil {
			appLog.Errorln(err.Error())
			return
		}
		appLog.WithFields(logrus.Fields{"to": to, "schedule": cronSpec}).Infoln("mail sent")
	})
	checkErrorAndExitIfErr(err)
	c.Start()
	<-ctx.Done()
	c.Stop()
}
