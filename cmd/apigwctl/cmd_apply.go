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
	"errors"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/apigw-tools/apigwctl/pkg/apigateway"
	"github.com/apigw-tools/apigwctl/pkg/manifest"
)

type ApplyOptions struct {
	Options

	Manifests []string
	DryRun    bool
}

func ApplyCommand(logger *logrus.Logger) *cobra.Command {
	opt := ApplyOptions{}

	cmd := &cobra.Command{
		Use:          "apply",
		Short:        "Create or update all resources described by the manifest",
		RunE:         ApplyFunc(logger, &opt),
		SilenceUsage: true,
		PreRun: func(cmd *cobra.Command, args []string) {
			options.CopyInto(&opt.Options)
			applyEnvFallbacks(&opt.Options)

			if len(opt.Manifests) == 0 {
				if m := os.Getenv("APIGW_MANIFEST"); m != "" {
					opt.Manifests = strings.Split(m, ",")
				}
			}
		},
	}

	cmd.Flags().StringSliceVar(&opt.Manifests, "manifest", nil, "manifest YAML file (can be given multiple times, later files override earlier ones)")
	cmd.Flags().BoolVar(&opt.DryRun, "dry-run", false, "only show what would be changed, without changing anything")

	return cmd
}

func ApplyFunc(logger *logrus.Logger, opt *ApplyOptions) cobraFuncE {
	return handleErrors(logger, func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, err := manifest.Load(opt.Manifests)
		if err != nil {
			return err
		}

		if m.Empty() {
			return errors.New("the manifest describes no resources")
		}

		reconciler, err := getReconciler(ctx, opt.Options, m, opt.DryRun)
		if err != nil {
			return err
		}

		if opt.DryRun {
			logger.Info("Performing a dry run, no resources will be changed.")
		}

		changes := 0

		// REST APIs and VPC links first, everything else references them.
		for _, spec := range m.RestAPIs {
			api, changed, err := reconciler.EnsureRestAPI(ctx, spec)
			if err != nil {
				return err
			}
			changes += logResource(logger, "REST API", resourceName(spec.Name, spec.ID), changed, api)
		}

		for _, spec := range m.VPCLinks {
			link, changed, err := reconciler.EnsureVPCLink(ctx, spec)
			if err != nil {
				return err
			}
			changes += logResource(logger, "VPC link", resourceName(spec.Name, spec.ID), changed, link)
		}

		for _, spec := range m.DomainNames {
			domain, changed, err := reconciler.EnsureDomainName(ctx, spec)
			if err != nil {
				return err
			}
			changes += logResource(logger, "domain name", spec.DomainName, changed, domain)
		}

		for _, spec := range m.APIKeys {
			key, changed, err := reconciler.EnsureAPIKey(ctx, spec)
			if err != nil {
				return err
			}
			changes += logResource(logger, "API key", resourceName(spec.Name, spec.ID), changed, key)
		}

		for _, spec := range m.UsagePlans {
			plan, changed, err := reconciler.EnsureUsagePlan(ctx, spec)
			if err != nil {
				return err
			}
			changes += logResource(logger, "usage plan", resourceName(spec.Name, spec.ID), changed, plan)
		}

		for _, spec := range m.UsagePlanKeys {
			key, changed, err := reconciler.EnsureUsagePlanKey(ctx, spec)
			if err != nil {
				return err
			}
			changes += logResource(logger, "usage plan key", resourceName(spec.APIKey, spec.APIKeyID), changed, key)
		}

		for _, spec := range m.BasePathMappings {
			mapping, changed, err := reconciler.EnsureBasePathMapping(ctx, spec)
			if err != nil {
				return err
			}
			changes += logResource(logger, "base path mapping", spec.DomainName, changed, mapping)
		}

		if changes == 0 {
			logger.Info("✅ All resources are already up-to-date.")
		} else if opt.DryRun {
			logger.Infof("✅ %d resource(s) would be changed.", changes)
		} else {
			logger.Infof("✅ %d resource(s) changed.", changes)
		}

		return nil
	})
}

func resourceName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func logResource(logger *logrus.Logger, kind, name string, changed bool, result any) int {
	if !changed {
		logger.Debugf("%s %q is up-to-date.", kind, name)
		return 0
	}

	logger.Infof("%s %q changed.", kind, name)
	logger.Debugf("%s %q: %s", kind, name, apigateway.RenderJSON(result))

	return 1
}
