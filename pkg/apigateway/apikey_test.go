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
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/google/go-cmp/cmp"

	"k8s.io/utils/ptr"
)

func TestEnsureAPIKey(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a missing key", func(t *testing.T) {
		var createInput *apigateway.CreateApiKeyInput

		client := &fakeClient{
			getApiKeys: func(params *apigateway.GetApiKeysInput) (*apigateway.GetApiKeysOutput, error) {
				return &apigateway.GetApiKeysOutput{}, nil
			},
			createApiKey: func(params *apigateway.CreateApiKeyInput) (*apigateway.CreateApiKeyOutput, error) {
				createInput = params
				return &apigateway.CreateApiKeyOutput{
					Id:      ptr.To("key1"),
					Name:    params.Name,
					Enabled: params.Enabled,
				}, nil
			},
		}

		key, changed, err := newTestReconciler(client).EnsureAPIKey(ctx, APIKeySpec{
			Name:    "billing",
			Enabled: true,
		})
		assertNoError(t, err)
		assertChanged(t, changed, true)

		if key.ID != "key1" {
			t.Errorf("expected key ID %q, got %q", "key1", key.ID)
		}
		if createInput == nil || !createInput.Enabled {
			t.Error("expected the key to be created enabled")
		}
	})

	t.Run("fails when an asserted ID does not exist", func(t *testing.T) {
		client := &fakeClient{
			getApiKey: func(params *apigateway.GetApiKeyInput) (*apigateway.GetApiKeyOutput, error) {
				return nil, notFoundErr()
			},
		}

		_, _, err := newTestReconciler(client).EnsureAPIKey(ctx, APIKeySpec{ID: "nope"})
		assertError(t, err)
	})

	t.Run("is idempotent", func(t *testing.T) {
		client := &fakeClient{
			getApiKeys: func(params *apigateway.GetApiKeysInput) (*apigateway.GetApiKeysOutput, error) {
				return &apigateway.GetApiKeysOutput{
					Items: []types.ApiKey{{
						Id:      ptr.To("key1"),
						Name:    ptr.To("billing"),
						Enabled: true,
					}},
				}, nil
			},
		}

		_, changed, err := newTestReconciler(client).EnsureAPIKey(ctx, APIKeySpec{
			Name:    "billing",
			Enabled: true,
		})
		assertNoError(t, err)
		assertChanged(t, changed, false)
	})

	t.Run("ignores prefix matches of the name query", func(t *testing.T) {
		created := false

		client := &fakeClient{
			getApiKeys: func(params *apigateway.GetApiKeysInput) (*apigateway.GetApiKeysOutput, error) {
				return &apigateway.GetApiKeysOutput{
					Items: []types.ApiKey{{
						Id:   ptr.To("other"),
						Name: ptr.To("billing-v2"),
					}},
				}, nil
			},
			createApiKey: func(params *apigateway.CreateApiKeyInput) (*apigateway.CreateApiKeyOutput, error) {
				created = true
				return &apigateway.CreateApiKeyOutput{Id: ptr.To("key1"), Name: params.Name}, nil
			},
		}

		_, changed, err := newTestReconciler(client).EnsureAPIKey(ctx, APIKeySpec{Name: "billing"})
		assertNoError(t, err)
		assertChanged(t, changed, true)

		if !created {
			t.Error("expected a new key to be created despite the prefix match")
		}
	})

	t.Run("patches changed fields", func(t *testing.T) {
		var updateInput *apigateway.UpdateApiKeyInput

		client := &fakeClient{
			getApiKey: func(params *apigateway.GetApiKeyInput) (*apigateway.GetApiKeyOutput, error) {
				return &apigateway.GetApiKeyOutput{
					Id:          ptr.To("key1"),
					Name:        ptr.To("billing"),
					Description: ptr.To("old"),
					Enabled:     false,
				}, nil
			},
			updateApiKey: func(params *apigateway.UpdateApiKeyInput) (*apigateway.UpdateApiKeyOutput, error) {
				updateInput = params
				return &apigateway.UpdateApiKeyOutput{Id: params.ApiKey}, nil
			},
		}

		_, changed, err := newTestReconciler(client).EnsureAPIKey(ctx, APIKeySpec{
			ID:          "key1",
			Name:        "billing",
			Description: "new",
			Enabled:     true,
		})
		assertNoError(t, err)
		assertChanged(t, changed, true)

		expected := []string{
			"replace /description=new",
			"replace /enabled=true",
		}
		if diff := cmp.Diff(expected, patchStrings(updateInput.PatchOperations)); diff != "" {
			t.Errorf("unexpected patch operations:\n%s", diff)
		}
	})

	t.Run("refuses to change the key value", func(t *testing.T) {
		client := &fakeClient{
			getApiKey: func(params *apigateway.GetApiKeyInput) (*apigateway.GetApiKeyOutput, error) {
				return &apigateway.GetApiKeyOutput{
					Id:    ptr.To("key1"),
					Name:  ptr.To("billing"),
					Value: ptr.To("original-value-123456"),
				}, nil
			},
		}

		_, _, err := newTestReconciler(client).EnsureAPIKey(ctx, APIKeySpec{
			ID:    "key1",
			Value: "different-value-654321",
		})
		assertError(t, err)
	})

	t.Run("dry run does not mutate", func(t *testing.T) {
		client := &fakeClient{
			getApiKeys: func(params *apigateway.GetApiKeysInput) (*apigateway.GetApiKeysOutput, error) {
				return &apigateway.GetApiKeysOutput{}, nil
			},
		}

		reconciler := newTestReconciler(client)
		reconciler.DryRun = true

		_, changed, err := reconciler.EnsureAPIKey(ctx, APIKeySpec{Name: "billing"})
		assertNoError(t, err)
		assertChanged(t, changed, true)
	})
}

func TestEnsureAPIKeyAbsent(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an existing key", func(t *testing.T) {
		deleted := false

		client := &fakeClient{
			getApiKey: func(params *apigateway.GetApiKeyInput) (*apigateway.GetApiKeyOutput, error) {
				return &apigateway.GetApiKeyOutput{Id: ptr.To("key1"), Name: ptr.To("billing")}, nil
			},
			deleteApiKey: func(params *apigateway.DeleteApiKeyInput) (*apigateway.DeleteApiKeyOutput, error) {
				deleted = true
				return &apigateway.DeleteApiKeyOutput{}, nil
			},
		}

		changed, err := newTestReconciler(client).EnsureAPIKeyAbsent(ctx, APIKeySpec{ID: "key1"})
		assertNoError(t, err)
		assertChanged(t, changed, true)

		if !deleted {
			t.Error("expected the key to be deleted")
		}
	})

	t.Run("tolerates a missing key", func(t *testing.T) {
		client := &fakeClient{
			getApiKey: func(params *apigateway.GetApiKeyInput) (*apigateway.GetApiKeyOutput, error) {
				return nil, notFoundErr()
			},
		}

		changed, err := newTestReconciler(client).EnsureAPIKeyAbsent(ctx, APIKeySpec{ID: "key1"})
		assertNoError(t, err)
		assertChanged(t, changed, false)
	})
}
