/*
Copyright 2025 The apigwctl contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/apigw-tools/apigwctl/pkg/apigateway"
)

type VPCLinksOptions struct {
	Options

	Name string
}

func VPCLinksCommand(logger *logrus.Logger) *cobra.Command {
	opt := VPCLinksOptions{}

	cmd := &cobra.Command{
		Use:          "vpc-links",
		Short:        "List the VPC links of the account as JSON",
		RunE:         VPCLinksFunc(logger, &opt),
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			options.CopyInto(&opt.Options)
			applyEnvFallbacks(&opt.Options)
		},
	}

	cmd.Flags().StringVar(&opt.Name, "name", "", "only show the VPC link with this name")

	return cmd
}

func VPCLinksFunc(logger *logrus.Logger, opt *VPCLinksOptions) cobraFuncE {
	return handleErrors(logger, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		reconciler, err := getReconciler(ctx, opt.Options, nil, false)
		if err != nil {
			return err
		}

		links, err := reconciler.ListVPCLinks(ctx)
		if err != nil {
			return err
		}

		if opt.Name != "" {
			filtered := make([]apigateway.VPCLink, 0, 1)
			for _, link := range links {
				if link.Name == opt.Name {
					filtered = append(filtered, link)
				}
			}
			links = filtered
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(links); err != nil {
			return fmt.Errorf("failed to encode VPC links: %w", err)
		}

		return nil
	})
}
