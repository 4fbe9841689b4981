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

// defaultKeyType is the only key type API Gateway supports today.
const defaultKeyType = "API_KEY"

// EnsureUsagePlanKey attaches the API key to the usage plan if it is not
// attached yet. Both the key and the plan must already exist.
func (r *Reconciler) EnsureUsagePlanKey(ctx context.Context, spec UsagePlanKeySpec) (*UsagePlanKey, bool, error) {
	keyID, planID, err := r.resolveUsagePlanKeyRefs(ctx, spec)
	if err != nil {
		return nil, false, err
	}
	if keyID == "" {
		return nil, false, fmt.Errorf("no API key matching %q exists", spec.keyRef())
	}
	if planID == "" {
		return nil, false, fmt.Errorf("no usage plan matching %q exists", spec.planRef())
	}

	key, err := r.getUsagePlanKey(ctx, planID, keyID)
	if err != nil {
		return nil, false, err
	}

	if key != nil {
		return key, false, nil
	}

	r.log.Infow("Attaching API key to usage plan", "keyId", keyID, "usagePlanId", planID)

	if r.DryRun {
		return nil, true, nil
	}

	keyType := spec.KeyType
	if keyType == "" {
		keyType = defaultKeyType
	}

	out, err := r.client.CreateUsagePlanKey(ctx, &apigateway.CreateUsagePlanKeyInput{
		UsagePlanId: ptr.To(planID),
		KeyId:       ptr.To(keyID),
		KeyType:     ptr.To(keyType),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to attach API key %q to usage plan %q: %w", keyID, planID, err)
	}

	return usagePlanKeyFromCreateOutput(out), true, nil
}

// EnsureUsagePlanKeyAbsent detaches the API key from the usage plan. A
// reference to a key or plan that no longer exists counts as already
// detached.
func (r *Reconciler) EnsureUsagePlanKeyAbsent(ctx context.Context, spec UsagePlanKeySpec) (bool, error) {
	keyID, planID, err := r.resolveUsagePlanKeyRefs(ctx, spec)
	if err != nil {
		return false, err
	}
	if keyID == "" || planID == "" {
		return false, nil
	}

	key, err := r.getUsagePlanKey(ctx, planID, keyID)
	if err != nil {
		return false, err
	}

	if key == nil {
		return false, nil
	}

	r.log.Infow("Detaching API key from usage plan", "keyId", keyID, "usagePlanId", planID)

	if r.DryRun {
		return true, nil
	}

	if _, err := r.client.DeleteUsagePlanKey(ctx, &apigateway.DeleteUsagePlanKeyInput{
		UsagePlanId: ptr.To(planID),
		KeyId:       ptr.To(keyID),
	}); err != nil {
		return false, fmt.Errorf("failed to detach API key %q from usage plan %q: %w", keyID, planID, err)
	}

	return true, nil
}

// resolveUsagePlanKeyRefs turns the name-or-ID references of the spec into
// concrete IDs. Empty results mean the referenced resource does not exist.
func (r *Reconciler) resolveUsagePlanKeyRefs(ctx context.Context, spec UsagePlanKeySpec) (keyID, planID string, err error) {
	if spec.APIKeyID == "" && spec.APIKey == "" {
		return "", "", errors.New("an API key reference is required")
	}
	if spec.UsagePlanID == "" && spec.UsagePlan == "" {
		return "", "", errors.New("a usage plan reference is required")
	}

	if spec.APIKeyID != "" {
		keyID = spec.APIKeyID
	} else {
		key, err := r.getAPIKey(ctx, APIKeySpec{Name: spec.APIKey})
		if err != nil {
			return "", "", err
		}
		if key != nil {
			keyID = key.ID
		}
	}

	if spec.UsagePlanID != "" {
		planID = spec.UsagePlanID
	} else {
		plan, err := r.findUsagePlanByNameOrID(ctx, spec.UsagePlan)
		if err != nil {
			return "", "", err
		}
		if plan != nil {
			planID = plan.ID
		}
	}

	return keyID, planID, nil
}

func (r *Reconciler) getUsagePlanKey(ctx context.Context, planID, keyID string) (*UsagePlanKey, error) {
	out, err := r.client.GetUsagePlanKey(ctx, &apigateway.GetUsagePlanKeyInput{
		UsagePlanId: ptr.To(planID),
		KeyId:       ptr.To(keyID),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage plan key %q of plan %q: %w", keyID, planID, err)
	}

	return usagePlanKeyFromSDK(types.UsagePlanKey{
		Id:    out.Id,
		Name:  out.Name,
		Type:  out.Type,
		Value: out.Value,
	}), nil
}

func (s UsagePlanKeySpec) keyRef() string {
	if s.APIKeyID != "" {
		return s.APIKeyID
	}
	return s.APIKey
}

func (s UsagePlanKeySpec) planRef() string {
	if s.UsagePlanID != "" {
		return s.UsagePlanID
	}
	return s.UsagePlan
}

func usagePlanKeyFromSDK(key types.UsagePlanKey) *UsagePlanKey {
	return &UsagePlanKey{
		ID:    ptr.Deref(key.Id, ""),
		Name:  ptr.Deref(key.Name, ""),
		Type:  ptr.Deref(key.Type, ""),
		Value: ptr.Deref(key.Value, ""),
	}
}

func usagePlanKeyFromCreateOutput(out *apigateway.CreateUsagePlanKeyOutput) *UsagePlanKey {
	return usagePlanKeyFromSDK(types.UsagePlanKey{
		Id:    out.Id,
		Name:  out.Name,
		Type:  out.Type,
		Value: out.Value,
	})
}
