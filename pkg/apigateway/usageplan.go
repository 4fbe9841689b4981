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

const usagePlanListLimit = 500

// EnsureUsagePlan creates or updates the usage plan described by spec and
// returns the resulting plan plus whether anything was changed.
func (r *Reconciler) EnsureUsagePlan(ctx context.Context, spec UsagePlanSpec) (*UsagePlan, bool, error) {
	plan, err := r.getUsagePlan(ctx, spec)
	if err != nil {
		return nil, false, err
	}

	if plan == nil {
		if spec.ID != "" {
			return nil, false, fmt.Errorf("no usage plan with ID %q exists", spec.ID)
		}

		return r.createUsagePlan(ctx, spec)
	}

	patch := buildUsagePlanPatch(spec, plan)
	if patch.empty() {
		return plan, false, nil
	}

	r.log.Infow("Updating usage plan", "name", plan.Name, "id", plan.ID, "patches", len(patch.ops))

	if r.DryRun {
		return plan, true, nil
	}

	out, err := r.client.UpdateUsagePlan(ctx, &apigateway.UpdateUsagePlanInput{
		UsagePlanId:     ptr.To(plan.ID),
		PatchOperations: patch.ops,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to update usage plan %q: %w", plan.ID, err)
	}

	return usagePlanFromUpdateOutput(out), true, nil
}

// EnsureUsagePlanAbsent deletes the usage plan if it exists. Attached API
// stages are detached first, deletion fails otherwise. Returns the plan as
// it was before deletion.
func (r *Reconciler) EnsureUsagePlanAbsent(ctx context.Context, spec UsagePlanSpec) (*UsagePlan, bool, error) {
	plan, err := r.getUsagePlan(ctx, spec)
	if err != nil {
		return nil, false, err
	}

	if plan == nil {
		return nil, false, nil
	}

	r.log.Infow("Deleting usage plan", "name", plan.Name, "id", plan.ID)

	if r.DryRun {
		return plan, true, nil
	}

	if len(plan.APIStages) > 0 {
		detach := &patchSet{}
		for _, stage := range plan.APIStages {
			detach.removeValue("/apiStages", stageValue(stage))
		}

		if _, err := r.client.UpdateUsagePlan(ctx, &apigateway.UpdateUsagePlanInput{
			UsagePlanId:     ptr.To(plan.ID),
			PatchOperations: detach.ops,
		}); err != nil {
			return nil, false, fmt.Errorf("failed to detach API stages from usage plan %q: %w", plan.ID, err)
		}
	}

	if _, err := r.client.DeleteUsagePlan(ctx, &apigateway.DeleteUsagePlanInput{UsagePlanId: ptr.To(plan.ID)}); err != nil {
		return nil, false, fmt.Errorf("failed to delete usage plan %q: %w", plan.ID, err)
	}

	return plan, true, nil
}

func (r *Reconciler) createUsagePlan(ctx context.Context, spec UsagePlanSpec) (*UsagePlan, bool, error) {
	if spec.Name == "" {
		return nil, false, errors.New("a name is required to create a usage plan")
	}

	input := &apigateway.CreateUsagePlanInput{
		Name:        ptr.To(spec.Name),
		Description: stringOrNil(spec.Description),
	}

	for _, stage := range spec.APIStages {
		input.ApiStages = append(input.ApiStages, types.ApiStage{
			ApiId: ptr.To(stage.RestAPIID),
			Stage: ptr.To(stage.Stage),
		})
	}

	if spec.ThrottleBurstLimit != nil || spec.ThrottleRateLimit != nil {
		input.Throttle = &types.ThrottleSettings{
			BurstLimit: ptr.Deref(spec.ThrottleBurstLimit, 0),
			RateLimit:  ptr.Deref(spec.ThrottleRateLimit, 0),
		}
	}

	if spec.QuotaLimit != nil || spec.QuotaOffset != nil || spec.QuotaPeriod != "" {
		input.Quota = &types.QuotaSettings{
			Limit:  ptr.Deref(spec.QuotaLimit, 0),
			Offset: ptr.Deref(spec.QuotaOffset, 0),
			Period: types.QuotaPeriodType(spec.QuotaPeriod),
		}
	}

	r.log.Infow("Creating usage plan", "name", spec.Name)

	if r.DryRun {
		return nil, true, nil
	}

	out, err := r.client.CreateUsagePlan(ctx, input)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create usage plan %q: %w", spec.Name, err)
	}

	return usagePlanFromCreateOutput(out), true, nil
}

// buildUsagePlanPatch computes the operations needed to converge an
// existing plan to the spec. API stages are addressed by "apiId:stage"
// values; throttle and quota subtrees are removed wholesale when the spec
// sets none of their fields and the corresponding purge flag is on.
func buildUsagePlanPatch(spec UsagePlanSpec, plan *UsagePlan) *patchSet {
	patch := &patchSet{}

	patch.replaceIfChanged("/name", spec.Name, plan.Name)
	patch.replaceIfChanged("/description", spec.Description, plan.Description)

	current := make(map[string]bool, len(plan.APIStages))
	for _, stage := range plan.APIStages {
		current[stageValue(stage)] = true
	}

	desired := make(map[string]bool, len(spec.APIStages))
	for _, stage := range spec.APIStages {
		value := stageValue(stage)
		desired[value] = true

		if !current[value] {
			patch.add("/apiStages", value)
		}
	}

	if ptr.Deref(spec.PurgeAPIStages, true) {
		for _, stage := range plan.APIStages {
			if value := stageValue(stage); !desired[value] {
				patch.removeValue("/apiStages", value)
			}
		}
	}

	throttleDesired := spec.ThrottleBurstLimit != nil || spec.ThrottleRateLimit != nil
	switch {
	case throttleDesired:
		if spec.ThrottleBurstLimit != nil {
			value := strconv.FormatInt(int64(*spec.ThrottleBurstLimit), 10)
			if plan.Throttle == nil {
				patch.add("/throttle/burstLimit", value)
			} else if plan.Throttle.BurstLimit != *spec.ThrottleBurstLimit {
				patch.replace("/throttle/burstLimit", value)
			}
		}
		if spec.ThrottleRateLimit != nil {
			value := strconv.FormatFloat(*spec.ThrottleRateLimit, 'f', -1, 64)
			if plan.Throttle == nil {
				patch.add("/throttle/rateLimit", value)
			} else if plan.Throttle.RateLimit != *spec.ThrottleRateLimit {
				patch.replace("/throttle/rateLimit", value)
			}
		}
	case plan.Throttle != nil && ptr.Deref(spec.PurgeThrottle, true):
		patch.remove("/throttle")
	}

	quotaDesired := spec.QuotaLimit != nil || spec.QuotaOffset != nil || spec.QuotaPeriod != ""
	switch {
	case quotaDesired:
		if spec.QuotaLimit != nil {
			value := strconv.FormatInt(int64(*spec.QuotaLimit), 10)
			if plan.Quota == nil {
				patch.add("/quota/limit", value)
			} else if plan.Quota.Limit != *spec.QuotaLimit {
				patch.replace("/quota/limit", value)
			}
		}
		if spec.QuotaOffset != nil {
			value := strconv.FormatInt(int64(*spec.QuotaOffset), 10)
			if plan.Quota == nil {
				patch.add("/quota/offset", value)
			} else if plan.Quota.Offset != *spec.QuotaOffset {
				patch.replace("/quota/offset", value)
			}
		}
		if spec.QuotaPeriod != "" {
			if plan.Quota == nil {
				patch.add("/quota/period", spec.QuotaPeriod)
			} else if plan.Quota.Period != spec.QuotaPeriod {
				patch.replace("/quota/period", spec.QuotaPeriod)
			}
		}
	case plan.Quota != nil && ptr.Deref(spec.PurgeQuota, true):
		patch.remove("/quota")
	}

	return patch
}

// getUsagePlan looks up a usage plan by ID or, failing that, by exact name
// match. A nil result means the plan does not exist.
func (r *Reconciler) getUsagePlan(ctx context.Context, spec UsagePlanSpec) (*UsagePlan, error) {
	if spec.ID != "" {
		out, err := r.client.GetUsagePlan(ctx, &apigateway.GetUsagePlanInput{UsagePlanId: ptr.To(spec.ID)})
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to get usage plan %q: %w", spec.ID, err)
		}

		return usagePlanFromGetOutput(out), nil
	}

	if spec.Name == "" {
		return nil, errors.New("either a name or an ID is required to identify a usage plan")
	}

	out, err := r.client.GetUsagePlans(ctx, &apigateway.GetUsagePlansInput{Limit: ptr.To[int32](usagePlanListLimit)})
	if err != nil {
		return nil, fmt.Errorf("failed to list usage plans: %w", err)
	}

	for _, plan := range out.Items {
		if ptr.Deref(plan.Name, "") == spec.Name {
			return usagePlanFromSDK(plan), nil
		}
	}

	return nil, nil
}

// findUsagePlanByNameOrID resolves a usage plan reference that may be
// either a name or an ID, used when attaching usage plan keys.
func (r *Reconciler) findUsagePlanByNameOrID(ctx context.Context, nameOrID string) (*UsagePlan, error) {
	out, err := r.client.GetUsagePlans(ctx, &apigateway.GetUsagePlansInput{Limit: ptr.To[int32](usagePlanListLimit)})
	if err != nil {
		return nil, fmt.Errorf("failed to list usage plans: %w", err)
	}

	for _, plan := range out.Items {
		if nameOrID == ptr.Deref(plan.Name, "") || nameOrID == ptr.Deref(plan.Id, "") {
			return usagePlanFromSDK(plan), nil
		}
	}

	return nil, nil
}

func stageValue(stage APIStage) string {
	return stage.RestAPIID + ":" + stage.Stage
}

func usagePlanFromSDK(plan types.UsagePlan) *UsagePlan {
	result := &UsagePlan{
		ID:          ptr.Deref(plan.Id, ""),
		Name:        ptr.Deref(plan.Name, ""),
		Description: ptr.Deref(plan.Description, ""),
	}

	for _, stage := range plan.ApiStages {
		result.APIStages = append(result.APIStages, APIStage{
			RestAPIID: ptr.Deref(stage.ApiId, ""),
			Stage:     ptr.Deref(stage.Stage, ""),
		})
	}

	if plan.Throttle != nil {
		result.Throttle = &ThrottleSettings{
			BurstLimit: plan.Throttle.BurstLimit,
			RateLimit:  plan.Throttle.RateLimit,
		}
	}

	if plan.Quota != nil {
		result.Quota = &QuotaSettings{
			Limit:  plan.Quota.Limit,
			Offset: plan.Quota.Offset,
			Period: string(plan.Quota.Period),
		}
	}

	return result
}

func usagePlanFromGetOutput(out *apigateway.GetUsagePlanOutput) *UsagePlan {
	return usagePlanFromSDK(types.UsagePlan{
		Id:          out.Id,
		Name:        out.Name,
		Description: out.Description,
		ApiStages:   out.ApiStages,
		Throttle:    out.Throttle,
		Quota:       out.Quota,
	})
}

func usagePlanFromCreateOutput(out *apigateway.CreateUsagePlanOutput) *UsagePlan {
	return usagePlanFromSDK(types.UsagePlan{
		Id:          out.Id,
		Name:        out.Name,
		Description: out.Description,
		ApiStages:   out.ApiStages,
		Throttle:    out.Throttle,
		Quota:       out.Quota,
	})
}

func usagePlanFromUpdateOutput(out *apigateway.UpdateUsagePlanOutput) *UsagePlan {
	return usagePlanFromSDK(types.UsagePlan{
		Id:          out.Id,
		Name:        out.Name,
		Description: out.Description,
		ApiStages:   out.ApiStages,
		Throttle:    out.Throttle,
		Quota:       out.Quota,
	})
}
