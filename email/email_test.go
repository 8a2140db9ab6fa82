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

package email

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "gopkg.in/gomail.v2"

	"github.com/meteoalgerie/gotap/config"
)

func testConfig() config.Email {
	return config.Email{
		Sender:     "chain@example.dz",
		Password:   "secret",
		SMTPServer: "smtp.example.dz",
		SMTPPort:   587,
		Recipients: []string{"forecaster@example.dz", "duty@example.dz"},
	}
}

// fakeSendCloser records messages instead of talking to a server,
// optionally failing for one recipient.
type fakeSendCloser struct {
	to     []string
	body   strings.Builder
	reject string
}

func (f *fakeSendCloser) Send(from string, to []string, msg io.WriterTo) error {
	for _, r := range to {
		if r == f.reject {
			return errors.New("mailbox unavailable")
		}
	}
	f.to = append(f.to, to...)
	_, err := msg.WriteTo(&f.body)
	return err
}

func (f *fakeSendCloser) Close() error { return nil }

func TestSend(t *testing.T) {
	dir := t.TempDir()
	attachment := filepath.Join(dir, "t2m_20231026.xlsx")
	require.NoError(t, os.WriteFile(attachment, []byte("workbook"), 0644))

	fake := &fakeSendCloser{}
	s := NewSender(testConfig())
	s.dial = func() (gomail.SendCloser, error) { return fake, nil }

	attached, err := s.Send(Message{
		Subject:     "T2M extraction 20231026",
		Body:        "Extraction complete.",
		Attachments: []string{attachment, filepath.Join(dir, "missing.xlsx")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attached)
	assert.ElementsMatch(t, []string{"forecaster@example.dz", "duty@example.dz"}, fake.to)
	assert.Contains(t, fake.body.String(), "T2M extraction 20231026")
}

func TestSendPartialFailure(t *testing.T) {
	fake := &fakeSendCloser{reject: "forecaster@example.dz"}
	s := NewSender(testConfig())
	s.dial = func() (gomail.SendCloser, error) { return fake, nil }

	_, err := s.Send(Message{Subject: "partial", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"duty@example.dz"}, fake.to)
}

func TestSendAllFail(t *testing.T) {
	cfg := testConfig()
	cfg.Recipients = []string{"forecaster@example.dz"}
	fake := &fakeSendCloser{reject: "forecaster@example.dz"}
	s := NewSender(cfg)
	s.dial = func() (gomail.SendCloser, error) { return fake, nil }

	_, err := s.Send(Message{Subject: "fail", Body: "b"})
	assert.Error(t, err)
}

func TestSendNoRecipients(t *testing.T) {
	cfg := testConfig()
	cfg.Recipients = nil
	s := NewSender(cfg)
	_, err := s.Send(Message{Subject: "x"})
	assert.Error(t, err)
}

func TestExistingAttachments(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(a, []byte("x"), 0644))

	out := ExistingAttachments([]string{a, filepath.Join(dir, "b.csv")})
	assert.Equal(t, []string{a}, out)

	assert.Empty(t, ExistingAttachments(nil))
}

func TestBuildHTML(t *testing.T) {
	s := NewSender(testConfig())
	m, attached := s.build("duty@example.dz", Message{Subject: "s", Body: "<b>done</b>", HTML: true})
	assert.Equal(t, 0, attached)
	var sb strings.Builder
	_, err := m.WriteTo(&sb)
	require.NoError(t, err)
	assert.Contains(t, sb.String(), "text/html")
}
