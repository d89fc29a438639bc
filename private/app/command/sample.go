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
package command

import (
	"github.com/spf13/cobra"

	"github.com/scionproto/diffserv/private/config"
)

// NewSample creates a command that prints sample configurations. Every
// sampler becomes a subcommand.
func NewSample(pather Pather, samplers ...func(Pather) *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Display sample files",
		Args:  cobra.NoArgs,
	}
	joined := Join(pather, cmd)
	for _, s := range samplers {
		cmd.AddCommand(s(joined))
	}
	return cmd
}

// NewSampleConfig returns a sampler subcommand that prints a sample of cfg.
func NewSampleConfig(cfg config.Sampler) func(Pather) *cobra.Command {
	return func(pather Pather) *cobra.Command {
		return &cobra.Command{
			Use:     "config",
			Short:   "Display sample configuration file",
			Example: "  " + pather.CommandPath() + " config",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				config.WriteSample(cmd.OutOrStdout(), nil, nil, cfg)
				return nil
			},
		}
	}
}
