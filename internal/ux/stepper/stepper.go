// Copyright 2024 Jetify Inc. and contributors. All rights reserved.
// Use of this source code is governed by the license in the LICENSE file.

package stepper

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Stepper shows a spinner next to a message while a slow step runs.
type Stepper struct {
	spinner *spinner.Spinner
}

func Start(w io.Writer, format string, a ...any) *Stepper {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	_ = s.Color("magenta")
	s.Suffix = " " + fmt.Sprintf(format, a...)
	s.Start()
	return &Stepper{spinner: s}
}

func (s *Stepper) Fail(format string, a ...any) {
	s.stop(color.RedString("✘"), format, a...)
}

func (s *Stepper) Success(format string, a ...any) {
	s.stop(color.GreenString("✓"), format, a...)
}

func (s *Stepper) stop(mark, format string, a ...any) {
	s.spinner.FinalMSG = fmt.Sprintf("%s %s\n", mark, fmt.Sprintf(format, a...))
	s.spinner.Stop()
}
