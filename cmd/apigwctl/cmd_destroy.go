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

	"github.com/apigw-tools/apigwctl/pkg/manifest"
)

type DestroyOptions struct {
	Options

	Manifests []string
	DryRun    bool
}

func DestroyCommand(logger *logrus.Logger) *cobra.Command {
	opt := DestroyOptions{}

	cmd := &cobra.Command{
		Use:          "destroy",
		Short:        "Delete all resources described by the manifest",
		RunE:         DestroyFunc(logger, &opt),
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
	cmd.Flags().BoolVar(&opt.DryRun, "dry-run", false, "only show what would be deleted, without deleting anything")

	return cmd
}

func DestroyFunc(logger *logrus.Logger, opt *DestroyOptions) cobraFuncE {
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
			logger.Info("Performing a dry run, no resources will be deleted.")
		}

		changes := 0

		// Deletion happens in the reverse of the apply order, so that
		// referencing resources go away before their targets.
		for _, spec := range m.BasePathMappings {
			_, changed, err := reconciler.EnsureBasePathMappingAbsent(ctx, spec)
			if err != nil {
				return err
			}
			changes += logDeletion(logger, "base path mapping", spec.DomainName, changed)
		}

		for _, spec := range m.UsagePlanKeys {
			changed, err := reconciler.EnsureUsagePlanKeyAbsent(ctx, spec)
			if err != nil {
				return err
			}
			changes += logDeletion(logger, "usage plan key", resourceName(spec.APIKey, spec.APIKeyID), changed)
		}

		for _, spec := range m.UsagePlans {
			_, changed, err := reconciler.EnsureUsagePlanAbsent(ctx, spec)
			if err != nil {
				return err
			}
			changes += logDeletion(logger, "usage plan", resourceName(spec.Name, spec.ID), changed)
		}

		for _, spec := range m.APIKeys {
			changed, err := reconciler.EnsureAPIKeyAbsent(ctx, spec)
			if err != nil {
				return err
			}
			changes += logDeletion(logger, "API key", resourceName(spec.Name, spec.ID), changed)
		}

		for _, spec := range m.DomainNames {
			_, changed, err := reconciler.EnsureDomainNameAbsent(ctx, spec)
			if err != nil {
				return err
			}
			changes += logDeletion(logger, "domain name", spec.DomainName, changed)
		}

		for _, spec := range m.VPCLinks {
			_, changed, err := reconciler.EnsureVPCLinkAbsent(ctx, spec)
			if err != nil {
				return err
			}
			changes += logDeletion(logger, "VPC link", resourceName(spec.Name, spec.ID), changed)
		}

		for _, spec := range m.RestAPIs {
			_, changed, err := reconciler.EnsureRestAPIAbsent(ctx, spec)
			if err != nil {
				return err
			}
			changes += logDeletion(logger, "REST API", resourceName(spec.Name, spec.ID), changed)
		}

		if changes == 0 {
			logger.Info("✅ No resources needed to be deleted.")
		} else if opt.DryRun {
			logger.Infof("✅ %d resource(s) would be deleted.", changes)
		} else {
			logger.Infof("✅ %d resource(s) deleted.", changes)
		}

		return nil
	})
}

func logDeletion(logger *logrus.Logger, kind, name string, changed bool) int {
	if !changed {
		logger.Debugf("%s %q is already gone.", kind, name)
		return 0
	}

	logger.Infof("%s %q deleted.", kind, name)

	return 1
}
