// Copyright 2023 Anapaya Systems
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
// Package command contains helpers shared by the cobra commands of the
// diffserv tools.
package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Pather returns the path to a command.
type Pather interface {
	CommandPath() string
}

// StringPather is a Pather with a fixed path.
type StringPather string

// CommandPath returns the string.
func (s StringPather) CommandPath() string {
	return string(s)
}

type joinedPather struct {
	parent Pather
	cmd    *cobra.Command
}

func (p joinedPather) CommandPath() string {
	return fmt.Sprintf("%s %s", p.parent.CommandPath(), p.cmd.Name())
}

// Join returns the Pather of cmd as a subcommand of parent.
func Join(parent Pather, cmd *cobra.Command) Pather {
	return joinedPather{parent: parent, cmd: cmd}
}
