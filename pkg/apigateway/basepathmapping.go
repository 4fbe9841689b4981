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

package apigateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"

	"k8s.io/utils/ptr"
)

// EnsureBasePathMapping creates or updates the base path mapping described
// by spec and returns the resulting mapping plus whether anything was
// changed. The REST API reference is resolved by name when no ID is given.
func (r *Reconciler) EnsureBasePathMapping(ctx context.Context, spec BasePathMappingSpec) (*BasePathMapping, bool, error) {
	if spec.DomainName == "" {
		return nil, false, errors.New("a domain name is required")
	}

	restAPIID, err := r.resolveRestAPIRef(ctx, spec)
	if err != nil {
		return nil, false, err
	}
	if restAPIID == "" {
		return nil, false, fmt.Errorf("no REST API matching %q exists", spec.restAPIRef())
	}

	mapping, err := r.getBasePathMapping(ctx, spec.DomainName, spec.basePath())
	if err != nil {
		return nil, false, err
	}

	if mapping == nil {
		r.log.Infow("Creating base path mapping", "domainName", spec.DomainName, "basePath", spec.basePath())

		if r.DryRun {
			return nil, true, nil
		}

		input := &apigateway.CreateBasePathMappingInput{
			DomainName: ptr.To(spec.DomainName),
			RestApiId:  ptr.To(restAPIID),
			Stage:      stringOrNil(spec.Stage),
		}
		if spec.basePath() != DefaultBasePath {
			input.BasePath = ptr.To(spec.BasePath)
		}

		out, err := r.client.CreateBasePathMapping(ctx, input)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create base path mapping for %q: %w", spec.DomainName, err)
		}

		return basePathMappingFromCreateOutput(out), true, nil
	}

	patch := &patchSet{}
	// API Gateway spells this patch path with a lowercase "api", unlike the
	// restApiId field everywhere else.
	patch.replaceIfChanged("/restapiId", restAPIID, mapping.RestAPIID)
	patch.replaceIfChanged("/stage", spec.Stage, mapping.Stage)

	if patch.empty() {
		return mapping, false, nil
	}

	r.log.Infow("Updating base path mapping", "domainName", spec.DomainName, "basePath", spec.basePath(), "patches", len(patch.ops))

	if r.DryRun {
		return mapping, true, nil
	}

	out, err := r.client.UpdateBasePathMapping(ctx, &apigateway.UpdateBasePathMappingInput{
		DomainName:      ptr.To(spec.DomainName),
		BasePath:        ptr.To(spec.basePath()),
		PatchOperations: patch.ops,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to update base path mapping for %q: %w", spec.DomainName, err)
	}

	return basePathMappingFromUpdateOutput(out), true, nil
}

// EnsureBasePathMappingAbsent deletes the base path mapping if it exists
// and returns the mapping as it was before deletion.
func (r *Reconciler) EnsureBasePathMappingAbsent(ctx context.Context, spec BasePathMappingSpec) (*BasePathMapping, bool, error) {
	if spec.DomainName == "" {
		return nil, false, errors.New("a domain name is required")
	}

	mapping, err := r.getBasePathMapping(ctx, spec.DomainName, spec.basePath())
	if err != nil {
		return nil, false, err
	}

	if mapping == nil {
		return nil, false, nil
	}

	r.log.Infow("Deleting base path mapping", "domainName", spec.DomainName, "basePath", spec.basePath())

	if r.DryRun {
		return mapping, true, nil
	}

	if _, err := r.client.DeleteBasePathMapping(ctx, &apigateway.DeleteBasePathMappingInput{
		DomainName: ptr.To(spec.DomainName),
		BasePath:   ptr.To(spec.basePath()),
	}); err != nil {
		return nil, false, fmt.Errorf("failed to delete base path mapping for %q: %w", spec.DomainName, err)
	}

	return mapping, true, nil
}

func (r *Reconciler) resolveRestAPIRef(ctx context.Context, spec BasePathMappingSpec) (string, error) {
	if spec.RestAPIID != "" {
		return spec.RestAPIID, nil
	}
	if spec.RestAPI == "" {
		return "", errors.New("a REST API reference is required")
	}

	api, err := r.findRestAPIByNameOrID(ctx, spec.RestAPI)
	if err != nil {
		return "", err
	}
	if api == nil {
		return "", nil
	}

	return api.ID, nil
}

func (s BasePathMappingSpec) restAPIRef() string {
	if s.RestAPIID != "" {
		return s.RestAPIID
	}
	return s.RestAPI
}

func (r *Reconciler) getBasePathMapping(ctx context.Context, domainName, basePath string) (*BasePathMapping, error) {
	out, err := r.client.GetBasePathMapping(ctx, &apigateway.GetBasePathMappingInput{
		DomainName: ptr.To(domainName),
		BasePath:   ptr.To(basePath),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get base path mapping %q of %q: %w", basePath, domainName, err)
	}

	return basePathMappingFromSDK(types.BasePathMapping{
		BasePath:  out.BasePath,
		RestApiId: out.RestApiId,
		Stage:     out.Stage,
	}), nil
}

func basePathMappingFromSDK(mapping types.BasePathMapping) *BasePathMapping {
	return &BasePathMapping{
		BasePath:  ptr.Deref(mapping.BasePath, ""),
		RestAPIID: ptr.Deref(mapping.RestApiId, ""),
		Stage:     ptr.Deref(mapping.Stage, ""),
	}
}

func basePathMappingFromCreateOutput(out *apigateway.CreateBasePathMappingOutput) *BasePathMapping {
	return basePathMappingFromSDK(types.BasePathMapping{
		BasePath:  out.BasePath,
		RestApiId: out.RestApiId,
		Stage:     out.Stage,
	})
}

func basePathMappingFromUpdateOutput(out *apigateway.UpdateBasePathMappingOutput) *BasePathMapping {
	return basePathMappingFromSDK(types.BasePathMapping{
		BasePath:  out.BasePath,
		RestApiId: out.RestApiId,
		Stage:     out.Stage,
	})
}
