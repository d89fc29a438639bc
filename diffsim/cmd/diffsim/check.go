// Copyright 2025 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/scionproto/diffserv/diffsim/sim"
	"github.com/scionproto/diffserv/pkg/tc"
	"github.com/scionproto/diffserv/pkg/tc/tcconf"
	"github.com/scionproto/diffserv/private/app/command"
)

func newCheck(pather command.Pather) *cobra.Command {
	var flags struct {
		discipline string
		noColor    bool
	}
	cmd := &cobra.Command{
		Use:   "check <queue-config>",
		Short: "Validate a traffic class configuration",
		Example: fmt.Sprintf(`  %[1]s check drr.conf
  %[1]s check --discipline spq https://example.com/queues.yaml`, pather.CommandPath()),
		Long: `'check' builds a queue discipline from a traffic class configuration.

It prints the resulting classes and every record that was rejected. The
command fails if no class could be built.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qd, rejected, err := sim.LoadQueue(cmd.Context(), flags.discipline, args[0])
			if err != nil {
				return err
			}
			writeClasses(cmd.OutOrStdout(), flags.discipline, qd.Classes())
			colored := !flags.noColor && isTerminal(cmd.OutOrStdout())
			writeRejections(cmd.OutOrStdout(), rejected, colored)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.discipline, "discipline", tc.DisciplineDRR,
		"Scheduling discipline (drr|spq)")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	return cmd
}

func writeClasses(w io.Writer, discipline string, classes []tc.ClassInfo) {
	value := "WEIGHT"
	if discipline != tc.DisciplineDRR {
		value = "PRIORITY"
	}
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"CLASS", value, "CAPACITY", "DEFAULT", "FILTERS"})
	for _, c := range classes {
		v := c.Weight
		if discipline != tc.DisciplineDRR {
			v = c.Priority
		}
		table.Append([]string{
			strconv.Itoa(c.Index),
			strconv.Itoa(v),
			strconv.Itoa(c.Cap),
			strconv.FormatBool(c.Default),
			strconv.Itoa(c.Filters),
		})
	}
	table.Render()
}

func writeRejections(w io.Writer, rejected tcconf.Rejections, colored bool) {
	good := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	if colored {
		good.EnableColor()
		bad.EnableColor()
	} else {
		good.DisableColor()
		bad.DisableColor()
	}
	if rejected.Len() == 0 {
		good.Fprintln(w, "\nNo records rejected.")
		return
	}
	bad.Fprintf(w, "\n%d records rejected:\n", rejected.Len())
	for _, r := range rejected {
		fmt.Fprintf(w, "  %s\n", r.Error())
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
