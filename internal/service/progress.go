// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package service

import (
	"io"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/cheggaaa/pb/v3/termutil"
)

const plainProgressTpl = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{bar . }} {{percent . }} ` +
	`{{speed . }} {{rtime . "ETA %s"}}` + "\n"

// withProgress wraps r in a progress bar of size bytes rendered to w. The
// returned func stops the bar.
func withProgress(r io.Reader, size int64, w io.Writer) (io.Reader, func()) {
	bar := pb.New64(size)
	bar.Set("prefix", "converting nodes")
	bar.Set(pb.Bytes, true)
	bar.SetWriter(w)
	bar.SetRefreshRate(time.Second)
	if w, err := termutil.TerminalWidth(); w == 0 || err != nil {
		bar.SetTemplateString(plainProgressTpl)
	}
	bar.Start()

	return bar.NewProxyReader(r), func() { bar.Finish() }
}
