/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package notification

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/blnkfinance/vault/config"
	"github.com/blnkfinance/vault/internal/request"
	"github.com/sirupsen/logrus"
)

const slackTimeout = 5 * time.Second

func slackPayload(projectName string, err error, at time.Time) json.RawMessage {
	header, _ := json.Marshal(fmt.Sprintf("Error From %s 🐞", projectName))
	message, _ := json.Marshal(fmt.Sprintf("*Error:*\n%v", err))
	timestamp, _ := json.Marshal(fmt.Sprintf("*Time:*\n%v", at.Format(time.RFC822)))

	return json.RawMessage(fmt.Sprintf(`{
		"blocks": [
			{"type": "header", "text": {"type": "plain_text", "text": %s, "emoji": true}},
			{"type": "section", "fields": [{"type": "mrkdwn", "text": %s}]},
			{"type": "section", "fields": [{"type": "mrkdwn", "text": %s}]}
		]
	}`, header, message, timestamp))
}

// SlackNotification posts an error report to the configured Slack webhook.
//
// Parameters:
// - webhookURL string: The Slack incoming webhook.
// - projectName string: Shown in the message header.
// - err error: The error to be reported.
//
// Returns:
// - error: An error if the request could not be built or Slack rejected it.
func SlackNotification(webhookURL, projectName string, err error) error {
	payload, reqErr := request.ToJsonReq(slackPayload(projectName, err, time.Now()))
	if reqErr != nil {
		return reqErr
	}

	req, reqErr := http.NewRequest(http.MethodPost, webhookURL, payload)
	if reqErr != nil {
		return reqErr
	}

	_, reqErr = request.Call(request.NewClient(slackTimeout), req, nil)
	return reqErr
}

// NotifyError logs systemError and, when Slack is configured, reports it there.
// It never blocks the caller.
func NotifyError(systemError error) {
	go func(systemError error) {
		logrus.Error(systemError)

		conf, err := config.Fetch()
		if err != nil {
			logrus.Error(err)
			return
		}

		if conf.Notification.Slack.WebhookUrl == "" {
			return
		}
		if err := SlackNotification(conf.Notification.Slack.WebhookUrl, conf.ProjectName, systemError); err != nil {
			logrus.WithError(err).Warn("failed to send slack notification")
		}
	}(systemError)
}
