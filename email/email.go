/*
Copyright © 2025 the GoTAP authors.
This file is part of GoTAP.

GoTAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GoTAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GoTAP.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package email sends product notifications with attachments over
// SMTP. Missing attachments are skipped with a warning rather than
// failing the send, so a late product does not block the mail that
// announces the rest.
package email

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"github.com/meteoalgerie/gotap/config"
)

// Logger logs progress and warnings. It can be swapped for a
// job-specific logger before use.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Message is one outgoing notification.
type Message struct {
	Subject     string
	Body        string
	HTML        bool     // send Body as text/html instead of text/plain
	Attachments []string // local file paths; missing ones are skipped
}

// Sender sends messages through one SMTP account.
type Sender struct {
	cfg  config.Email
	dial func() (gomail.SendCloser, error)
}

// NewSender creates a Sender for the given account. The connection is
// made lazily at send time.
func NewSender(cfg config.Email) *Sender {
	d := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.Sender, cfg.Password)
	return &Sender{
		cfg:  cfg,
		dial: func() (gomail.SendCloser, error) { return d.Dial() },
	}
}

// Send delivers msg to each configured recipient in turn, attaching
// the files that exist. A failure for one recipient is logged and does
// not stop delivery to the rest; an error is returned only when every
// recipient fails. The returned count is the number of attachments
// included.
func (s *Sender) Send(msg Message) (int, error) {
	if len(s.cfg.Recipients) == 0 {
		return 0, fmt.Errorf("email: no recipients configured")
	}
	sc, err := s.dial()
	if err != nil {
		return 0, fmt.Errorf("email: connecting to %s:%d: %v", s.cfg.SMTPServer, s.cfg.SMTPPort, err)
	}
	defer sc.Close()

	var sent, attached int
	for _, recipient := range s.cfg.Recipients {
		m, n := s.build(recipient, msg)
		if err := gomail.Send(sc, m); err != nil {
			Logger.Errorf("email: sending to %s: %v", recipient, err)
			continue
		}
		sent++
		attached = n
	}
	if sent == 0 {
		return 0, fmt.Errorf("email: sending %q failed for all %d recipients", msg.Subject, len(s.cfg.Recipients))
	}
	Logger.Infof("email: sent %q to %d of %d recipients with %d attachments",
		msg.Subject, sent, len(s.cfg.Recipients), attached)
	return attached, nil
}

// build assembles the wire message for one recipient, returning it
// together with the number of attachments that were found and included.
func (s *Sender) build(recipient string, msg Message) (*gomail.Message, int) {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.Sender)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML {
		m.SetBody("text/html", msg.Body)
	} else {
		m.SetBody("text/plain", msg.Body)
	}
	attached := 0
	for _, path := range ExistingAttachments(msg.Attachments) {
		m.Attach(path)
		attached++
	}
	return m, attached
}

// ExistingAttachments filters paths down to the files that exist,
// warning about each one skipped.
func ExistingAttachments(paths []string) []string {
	var out []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			Logger.Warnf("email: skipping missing attachment %s", path)
			continue
		}
		out = append(out, path)
	}
	return out
}
