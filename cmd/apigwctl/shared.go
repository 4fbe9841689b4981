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
	"context"
	"errors"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/apigw-tools/apigwctl/pkg/apigateway"
	"github.com/apigw-tools/apigwctl/pkg/log"
	"github.com/apigw-tools/apigwctl/pkg/manifest"
)

// Options are the global flags shared by all subcommands.
type Options struct {
	Verbose  bool
	Region   string
	Endpoint string
}

func (o *Options) CopyInto(other *Options) {
	other.Verbose = o.Verbose
	other.Region = o.Region
	other.Endpoint = o.Endpoint
}

var options = &Options{}

type cobraFuncE func(cmd *cobra.Command, args []string) error

func handleErrors(logger *logrus.Logger, action cobraFuncE) cobraFuncE {
	return func(cmd *cobra.Command, args []string) error {
		err := action(cmd, args)
		if err != nil {
			logger.Errorf("❌ Operation failed: %v.", err)
		}

		return err
	}
}

// applyEnvFallbacks fills unset global options from the environment. The
// region can additionally come from the manifest, so it is not validated
// here.
func applyEnvFallbacks(opt *Options) {
	if opt.Region == "" {
		opt.Region = os.Getenv("AWS_REGION")
	}
	if opt.Endpoint == "" {
		opt.Endpoint = os.Getenv("AWS_ENDPOINT_URL")
	}
}

// getReconciler builds a reconciler from the global options and the loaded
// manifest. Flags beat environment beats manifest for the region.
func getReconciler(ctx context.Context, opt Options, m *manifest.Manifest, dryRun bool) (*apigateway.Reconciler, error) {
	region := opt.Region
	if region == "" && m != nil {
		region = m.Region
	}
	if region == "" {
		return nil, errors.New("no region given, use --region, $AWS_REGION or the manifest's region field")
	}

	cs, err := apigateway.GetClientSet(ctx, os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"), region, opt.Endpoint)
	if err != nil {
		return nil, err
	}

	reconciler := apigateway.NewReconciler(cs, log.New(opt.Verbose, log.FormatConsole))
	reconciler.DryRun = dryRun

	return reconciler, nil
}
