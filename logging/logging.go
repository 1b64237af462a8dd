// Copyright 2020 Readium Foundation. All rights reserved.
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE file exposed on Github (readium) in the project repository.

package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/slack-go/slack"

	"github.com/readium/readium-shelf-server/config"
)

var (
	LogFile      *log.Logger
	SlackApi     *slack.Client
	SlackChannel string
)

// Init opens the log file and the Slack channel referenced in the
// configuration. Both are optional.
func Init(cfg config.Logging) error {
	if cfg.Directory != "" {
		file, err := os.OpenFile(cfg.Directory, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		LogFile = log.New(file, "", log.LstdFlags)
	}

	if cfg.SlackToken != "" && cfg.SlackChannelID != "" {
		api := slack.New(cfg.SlackToken)
		if _, err := api.AuthTest(); err != nil {
			return err
		}
		SlackApi = api
		SlackChannel = cfg.SlackChannelID
	}

	return nil
}

// Print writes a message to the console, the log file and the Slack
// channel, whichever are configured.
func Print(message string) {
	log.Print(message)

	if LogFile != nil {
		LogFile.Print(message)
	}

	if SlackApi != nil {
		_, _, err := SlackApi.PostMessage(SlackChannel, slack.MsgOptionText(message, false))
		if err != nil {
			log.Printf("Error sending the message to Slack: %v", err)
		}
	}
}

// Printf formats a message and prints it.
func Printf(format string, v ...interface{}) {
	Print(fmt.Sprintf(format, v...))
}
