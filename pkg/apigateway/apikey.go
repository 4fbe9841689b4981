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
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"

	"k8s.io/utils/ptr"
)

// EnsureAPIKey creates or updates the API key described by spec and
// returns the resulting key plus whether anything was changed.
func (r *Reconciler) EnsureAPIKey(ctx context.Context, spec APIKeySpec) (*APIKey, bool, error) {
	key, err := r.getAPIKey(ctx, spec)
	if err != nil {
		return nil, false, err
	}

	if key == nil {
		if spec.ID != "" {
			// The ID was asserted by the caller; silently creating a new key
			// would hand them back a different resource.
			return nil, false, fmt.Errorf("no API key with ID %q exists", spec.ID)
		}

		r.log.Infow("Creating API key", "name", spec.Name)

		if r.DryRun {
			return nil, true, nil
		}

		out, err := r.client.CreateApiKey(ctx, &apigateway.CreateApiKeyInput{
			Name:               ptr.To(spec.Name),
			Description:        stringOrNil(spec.Description),
			Enabled:            spec.Enabled,
			GenerateDistinctId: spec.GenerateDistinctID,
			Value:              stringOrNil(spec.Value),
		})
		if err != nil {
			return nil, false, fmt.Errorf("failed to create API key: %w", err)
		}

		return apiKeyFromCreateOutput(out), true, nil
	}

	if spec.Value != "" && spec.Value != key.Value {
		return nil, false, errors.New("the value of an API key cannot be changed after creation")
	}

	patch := &patchSet{}
	patch.replaceIfChanged("/name", spec.Name, key.Name)
	patch.replaceIfChanged("/description", spec.Description, key.Description)
	if spec.Enabled != key.Enabled {
		patch.replace("/enabled", strconv.FormatBool(spec.Enabled))
	}

	if patch.empty() {
		return key, false, nil
	}

	r.log.Infow("Updating API key", "name", key.Name, "id", key.ID, "patches", len(patch.ops))

	if r.DryRun {
		return key, true, nil
	}

	out, err := r.client.UpdateApiKey(ctx, &apigateway.UpdateApiKeyInput{
		ApiKey:          ptr.To(key.ID),
		PatchOperations: patch.ops,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to update API key %q: %w", key.ID, err)
	}

	return apiKeyFromUpdateOutput(out), true, nil
}

// EnsureAPIKeyAbsent deletes the API key described by spec if it exists.
func (r *Reconciler) EnsureAPIKeyAbsent(ctx context.Context, spec APIKeySpec) (bool, error) {
	key, err := r.getAPIKey(ctx, spec)
	if err != nil {
		return false, err
	}

	if key == nil {
		return false, nil
	}

	r.log.Infow("Deleting API key", "name", key.Name, "id", key.ID)

	if r.DryRun {
		return true, nil
	}

	if _, err := r.client.DeleteApiKey(ctx, &apigateway.DeleteApiKeyInput{ApiKey: ptr.To(key.ID)}); err != nil {
		return false, fmt.Errorf("failed to delete API key %q: %w", key.ID, err)
	}

	return true, nil
}

// getAPIKey looks up an API key by ID or, failing that, by exact name
// match. A nil result means the key does not exist.
func (r *Reconciler) getAPIKey(ctx context.Context, spec APIKeySpec) (*APIKey, error) {
	if spec.ID != "" {
		out, err := r.client.GetApiKey(ctx, &apigateway.GetApiKeyInput{
			ApiKey:       ptr.To(spec.ID),
			IncludeValue: ptr.To(true),
		})
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to get API key %q: %w", spec.ID, err)
		}

		return apiKeyFromGetOutput(out), nil
	}

	if spec.Name == "" {
		return nil, errors.New("either a name or an ID is required to identify an API key")
	}

	// nameQuery is a prefix match, so an exact comparison is still needed.
	out, err := r.client.GetApiKeys(ctx, &apigateway.GetApiKeysInput{
		NameQuery:     ptr.To(spec.Name),
		IncludeValues: ptr.To(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}

	for _, item := range out.Items {
		if ptr.Deref(item.Name, "") == spec.Name {
			return apiKeyFromSDK(item), nil
		}
	}

	return nil, nil
}

func apiKeyFromSDK(key types.ApiKey) *APIKey {
	return &APIKey{
		ID:              ptr.Deref(key.Id, ""),
		Name:            ptr.Deref(key.Name, ""),
		Description:     ptr.Deref(key.Description, ""),
		Enabled:         key.Enabled,
		Value:           ptr.Deref(key.Value, ""),
		StageKeys:       key.StageKeys,
		Tags:            key.Tags,
		CreatedDate:     key.CreatedDate,
		LastUpdatedDate: key.LastUpdatedDate,
	}
}

func apiKeyFromGetOutput(out *apigateway.GetApiKeyOutput) *APIKey {
	return apiKeyFromSDK(types.ApiKey{
		Id:              out.Id,
		Name:            out.Name,
		Description:     out.Description,
		Enabled:         out.Enabled,
		Value:           out.Value,
		StageKeys:       out.StageKeys,
		Tags:            out.Tags,
		CreatedDate:     out.CreatedDate,
		LastUpdatedDate: out.LastUpdatedDate,
	})
}

func apiKeyFromCreateOutput(out *apigateway.CreateApiKeyOutput) *APIKey {
	return apiKeyFromSDK(types.ApiKey{
		Id:              out.Id,
		Name:            out.Name,
		Description:     out.Description,
		Enabled:         out.Enabled,
		Value:           out.Value,
		StageKeys:       out.StageKeys,
		Tags:            out.Tags,
		CreatedDate:     out.CreatedDate,
		LastUpdatedDate: out.LastUpdatedDate,
	})
}

func apiKeyFromUpdateOutput(out *apigateway.UpdateApiKeyOutput) *APIKey {
	return apiKeyFromSDK(types.ApiKey{
		Id:              out.Id,
		Name:            out.Name,
		Description:     out.Description,
		Enabled:         out.Enabled,
		Value:           out.Value,
		StageKeys:       out.StageKeys,
		Tags:            out.Tags,
		CreatedDate:     out.CreatedDate,
		LastUpdatedDate: out.LastUpdatedDate,
	})
}

// stringOrNil maps the spec convention of "empty means unset" to the SDK
// convention of nil pointers.
func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return ptr.To(s)
}
