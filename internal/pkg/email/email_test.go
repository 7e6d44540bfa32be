package email

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnconfiguredServiceLogsInsteadOfSending(t *testing.T) {
	var buf bytes.Buffer
	svc := NewEmailService(SMTPConfig{}, zerolog.New(&buf))

	rank := 3
	err := svc.SendAdmissionDecision(AdmissionDecision{
		ToEmail: "applicant@mail.com", ToName: "Ayesha", ProgramName: "BS Computer Science",
		Session: "2025", Status: "SELECTED", Rank: &rank,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "admission decision email not sent")

	buf.Reset()
	require.NoError(t, svc.SendPayslip(PayslipNotice{ToEmail: "emp@campus.edu", Period: "2025-05"}))
	assert.Contains(t, buf.String(), "payslip email not sent")
}

func TestBuildMessageHeadersAreStable(t *testing.T) {
	msg := string(buildMessage("Campus <no-reply@campus.edu>", "a@b.co", "Hello", "<p>x</p>"))
	lines := strings.Split(msg, "\r\n")
	assert.Equal(t, "Content-Type: text/html; charset=UTF-8", lines[0])
	assert.Equal(t, "From: Campus <no-reply@campus.edu>", lines[1])
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>x</p>"))
}
