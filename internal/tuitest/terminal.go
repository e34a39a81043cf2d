package tuitest

import (
	"bytes"
	"io"
)

// terminalReply pairs a query the program writes with the answer a real
// terminal would send back.
type terminalReply struct {
	query  []byte
	answer []byte
}

// termenv and bubbletea probe cursor position and colours on startup and
// block until answered.
var terminalReplies = []terminalReply{
	{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
	{[]byte("\x1b[c"), []byte("\x1b[?62;22c")},
	{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x07")},
	{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:cccc/cccc/cccc\x1b\\")},
	{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
	{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
}

const (
	responderMaxBuffer = 256
	responderTail      = 64
)

type terminalResponder struct {
	w   io.Writer
	buf []byte
}

func newTerminalResponder(w io.Writer) *terminalResponder {
	return &terminalResponder{w: w, buf: make([]byte, 0, 128)}
}

// Process scans chunk for queries, including ones split across reads.
func (tr *terminalResponder) Process(chunk []byte) {
	tr.buf = append(tr.buf, chunk...)
	for tr.answerNext() {
	}
	if len(tr.buf) > responderMaxBuffer {
		tr.buf = tr.buf[len(tr.buf)-responderTail:]
	}
}

// answerNext replies to the earliest pending query and drops the buffer up to
// its end. It reports false when nothing is pending.
func (tr *terminalResponder) answerNext() bool {
	first, firstIdx := -1, -1
	for i, reply := range terminalReplies {
		idx := bytes.Index(tr.buf, reply.query)
		if idx >= 0 && (firstIdx < 0 || idx < firstIdx) {
			first, firstIdx = i, idx
		}
	}
	if first < 0 {
		return false
	}
	reply := terminalReplies[first]
	tr.buf = tr.buf[firstIdx+len(reply.query):]
	_, _ = tr.w.Write(reply.answer)
	return true
}
