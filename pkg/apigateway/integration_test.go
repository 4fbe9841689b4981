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

//go:build integration

package apigateway

import (
	"context"
	"os"
	"testing"

	"go.uber.org/zap"

	"k8s.io/utils/ptr"
)

// These tests run against a real API Gateway endpoint, usually LocalStack:
//
//	AWS_TEST_ENDPOINT=http://localhost:4566 go test -tags integration ./pkg/apigateway/...

func getTestReconciler(ctx context.Context, t *testing.T) *Reconciler {
	endpoint := os.Getenv("AWS_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("no AWS_TEST_ENDPOINT defined")
	}

	cs, err := getClientSet(ctx, "test", "test", "eu-central-1", endpoint)
	if err != nil {
		t.Fatalf("failed to create client set: %v", err)
	}

	return NewReconciler(cs, zap.NewNop().Sugar())
}

func TestRestAPILifecycle(t *testing.T) {
	ctx := context.Background()
	reconciler := getTestReconciler(ctx, t)

	spec := RestAPISpec{
		Name:        "apigwctl-integration",
		Description: "created by the integration tests",
	}

	defer func() {
		if _, _, err := reconciler.EnsureRestAPIAbsent(ctx, spec); err != nil {
			t.Errorf("cleanup failed: %v", err)
		}
	}()

	api, changed, err := reconciler.EnsureRestAPI(ctx, spec)
	if err != nil {
		t.Fatalf("failed to create REST API: %v", err)
	}
	if !changed {
		t.Fatal("expected the first reconciliation to create the API")
	}
	if api.ID == "" {
		t.Fatal("expected the created API to have an ID")
	}

	_, changed, err = reconciler.EnsureRestAPI(ctx, spec)
	if err != nil {
		t.Fatalf("failed to reconcile REST API: %v", err)
	}
	if changed {
		t.Error("expected the second reconciliation to be a no-op")
	}

	spec.Description = "updated by the integration tests"

	updated, changed, err := reconciler.EnsureRestAPI(ctx, spec)
	if err != nil {
		t.Fatalf("failed to update REST API: %v", err)
	}
	if !changed {
		t.Error("expected the description change to be applied")
	}
	if updated.Description != spec.Description {
		t.Errorf("expected description %q, got %q", spec.Description, updated.Description)
	}
}

func TestUsagePlanLifecycle(t *testing.T) {
	ctx := context.Background()
	reconciler := getTestReconciler(ctx, t)

	spec := UsagePlanSpec{
		Name:               "apigwctl-integration",
		ThrottleBurstLimit: ptr.To[int32](200),
		ThrottleRateLimit:  ptr.To[float64](100),
	}

	defer func() {
		if _, _, err := reconciler.EnsureUsagePlanAbsent(ctx, spec); err != nil {
			t.Errorf("cleanup failed: %v", err)
		}
	}()

	plan, changed, err := reconciler.EnsureUsagePlan(ctx, spec)
	if err != nil {
		t.Fatalf("failed to create usage plan: %v", err)
	}
	if !changed {
		t.Fatal("expected the first reconciliation to create the plan")
	}
	if plan.Throttle == nil || plan.Throttle.BurstLimit != 200 {
		t.Error("expected the throttle settings to be applied")
	}

	// dropping the throttle fields purges them by default
	spec.ThrottleBurstLimit = nil
	spec.ThrottleRateLimit = nil

	purged, changed, err := reconciler.EnsureUsagePlan(ctx, spec)
	if err != nil {
		t.Fatalf("failed to purge throttle settings: %v", err)
	}
	if !changed {
		t.Error("expected the purge to be applied")
	}
	if purged.Throttle != nil {
		t.Error("expected the throttle settings to be gone")
	}
}
