// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package common

import (
	"regexp"
	"strings"
)

type LogSanitizer interface {
	SanitizeLogMessage(raw string) string
}

// logSanitizer performs string-replacement based log redaction.
// It is a backstop: SAS URLs and connection strings end up inside SDK errors, and those errors get logged.
type logSanitizer struct{}

func NewLogSanitizer() LogSanitizer {
	return &logSanitizer{}
}

var sensitiveKeys = []string{
	"sig",       // SAS signature in query strings
	"signature", // covers both "signature" and x-amz-signature
	"token",
	"accountkey",            // connection string AccountKey=
	"sharedaccesssignature", // connection string SharedAccessSignature=
}

// SanitizeLogMessage removes credentials from msg.
// Matching runs on a lowered copy first; regexes only run when a key is present, since
// case-insensitive regexes are much slower than strings.Contains.
func (s *logSanitizer) SanitizeLogMessage(msg string) string {
	lowerMsg := strings.ToLower(msg)

	for _, key := range sensitiveKeys {
		if strings.Contains(lowerMsg, key) {
			msg = s.redact(msg, key) // must redact from the real (original case) msg, not lowerMsg
		}
	}

	return msg
}

func (s *logSanitizer) redact(msg, key string) string {
	const redacted = "-REDACTED-"

	return sensitiveRegexMap[key].ReplaceAllString(msg, "$1"+redacted)
}

var sensitiveRegexMap = make(map[string]*regexp.Regexp)

func init() {
	for _, key := range sensitiveKeys {
		// First group gets key and delimiter, second group gets the value up to a terminator.
		// Values are assumed never to contain '&' or ';'.
		sensitiveRegexMap[key] = regexp.MustCompile("(?i)(?P<key>" + key + "[ \t]*[:=][ \t]*)(?P<value>[^& ,;\t\n\r]+)")
	}
}
