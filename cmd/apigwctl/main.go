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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/apigw-tools/apigwctl/pkg/log"
)

func main() {
	logger := log.NewLogrus()

	rootCmd := &cobra.Command{
		Use:           "apigwctl",
		Short:         "Converges AWS API Gateway resources to a declarative manifest",
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if options.Verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
		},
	}

	pFlags := rootCmd.PersistentFlags()
	pFlags.BoolVarP(&options.Verbose, "verbose", "v", false, "enable more verbose output")
	pFlags.StringVar(&options.Region, "region", "", "AWS region to operate in (falls back to $AWS_REGION)")
	pFlags.StringVar(&options.Endpoint, "endpoint", "", "custom API Gateway endpoint, e.g. for LocalStack (falls back to $AWS_ENDPOINT_URL)")

	addCommands(rootCmd, logger)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommands(cmd *cobra.Command, logger *logrus.Logger) {
	cmd.AddCommand(
		ApplyCommand(logger),
		DestroyCommand(logger),
		VPCLinksCommand(logger),
	)
}
