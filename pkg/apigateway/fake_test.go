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
	"go.uber.org/zap"

	"k8s.io/utils/ptr"
)

// fakeClient implements Client via optional function fields. Calling an
// operation a test did not configure panics via the embedded nil Client,
// which is exactly what we want: it flags unexpected API usage.
type fakeClient struct {
	Client

	getApiKey    func(*apigateway.GetApiKeyInput) (*apigateway.GetApiKeyOutput, error)
	getApiKeys   func(*apigateway.GetApiKeysInput) (*apigateway.GetApiKeysOutput, error)
	createApiKey func(*apigateway.CreateApiKeyInput) (*apigateway.CreateApiKeyOutput, error)
	updateApiKey func(*apigateway.UpdateApiKeyInput) (*apigateway.UpdateApiKeyOutput, error)
	deleteApiKey func(*apigateway.DeleteApiKeyInput) (*apigateway.DeleteApiKeyOutput, error)

	getDomainName    func(*apigateway.GetDomainNameInput) (*apigateway.GetDomainNameOutput, error)
	createDomainName func(*apigateway.CreateDomainNameInput) (*apigateway.CreateDomainNameOutput, error)
	updateDomainName func(*apigateway.UpdateDomainNameInput) (*apigateway.UpdateDomainNameOutput, error)
	deleteDomainName func(*apigateway.DeleteDomainNameInput) (*apigateway.DeleteDomainNameOutput, error)
	tagResource      func(*apigateway.TagResourceInput) (*apigateway.TagResourceOutput, error)
	untagResource    func(*apigateway.UntagResourceInput) (*apigateway.UntagResourceOutput, error)

	getRestApi    func(*apigateway.GetRestApiInput) (*apigateway.GetRestApiOutput, error)
	getRestApis   func(*apigateway.GetRestApisInput) (*apigateway.GetRestApisOutput, error)
	createRestApi func(*apigateway.CreateRestApiInput) (*apigateway.CreateRestApiOutput, error)
	updateRestApi func(*apigateway.UpdateRestApiInput) (*apigateway.UpdateRestApiOutput, error)
	deleteRestApi func(*apigateway.DeleteRestApiInput) (*apigateway.DeleteRestApiOutput, error)

	getUsagePlan    func(*apigateway.GetUsagePlanInput) (*apigateway.GetUsagePlanOutput, error)
	getUsagePlans   func(*apigateway.GetUsagePlansInput) (*apigateway.GetUsagePlansOutput, error)
	createUsagePlan func(*apigateway.CreateUsagePlanInput) (*apigateway.CreateUsagePlanOutput, error)
	updateUsagePlan func(*apigateway.UpdateUsagePlanInput) (*apigateway.UpdateUsagePlanOutput, error)
	deleteUsagePlan func(*apigateway.DeleteUsagePlanInput) (*apigateway.DeleteUsagePlanOutput, error)

	getUsagePlanKey    func(*apigateway.GetUsagePlanKeyInput) (*apigateway.GetUsagePlanKeyOutput, error)
	createUsagePlanKey func(*apigateway.CreateUsagePlanKeyInput) (*apigateway.CreateUsagePlanKeyOutput, error)
	deleteUsagePlanKey func(*apigateway.DeleteUsagePlanKeyInput) (*apigateway.DeleteUsagePlanKeyOutput, error)

	getBasePathMapping    func(*apigateway.GetBasePathMappingInput) (*apigateway.GetBasePathMappingOutput, error)
	createBasePathMapping func(*apigateway.CreateBasePathMappingInput) (*apigateway.CreateBasePathMappingOutput, error)
	updateBasePathMapping func(*apigateway.UpdateBasePathMappingInput) (*apigateway.UpdateBasePathMappingOutput, error)
	deleteBasePathMapping func(*apigateway.DeleteBasePathMappingInput) (*apigateway.DeleteBasePathMappingOutput, error)

	getVpcLink    func(*apigateway.GetVpcLinkInput) (*apigateway.GetVpcLinkOutput, error)
	getVpcLinks   func(*apigateway.GetVpcLinksInput) (*apigateway.GetVpcLinksOutput, error)
	createVpcLink func(*apigateway.CreateVpcLinkInput) (*apigateway.CreateVpcLinkOutput, error)
	updateVpcLink func(*apigateway.UpdateVpcLinkInput) (*apigateway.UpdateVpcLinkOutput, error)
	deleteVpcLink func(*apigateway.DeleteVpcLinkInput) (*apigateway.DeleteVpcLinkOutput, error)
}

func (f *fakeClient) GetApiKey(ctx context.Context, params *apigateway.GetApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.GetApiKeyOutput, error) {
	return f.getApiKey(params)
}

func (f *fakeClient) GetApiKeys(ctx context.Context, params *apigateway.GetApiKeysInput, optFns ...func(*apigateway.Options)) (*apigateway.GetApiKeysOutput, error) {
	return f.getApiKeys(params)
}

func (f *fakeClient) CreateApiKey(ctx context.Context, params *apigateway.CreateApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateApiKeyOutput, error) {
	return f.createApiKey(params)
}

func (f *fakeClient) UpdateApiKey(ctx context.Context, params *apigateway.UpdateApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateApiKeyOutput, error) {
	return f.updateApiKey(params)
}

func (f *fakeClient) DeleteApiKey(ctx context.Context, params *apigateway.DeleteApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteApiKeyOutput, error) {
	return f.deleteApiKey(params)
}

func (f *fakeClient) GetDomainName(ctx context.Context, params *apigateway.GetDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.GetDomainNameOutput, error) {
	return f.getDomainName(params)
}

func (f *fakeClient) CreateDomainName(ctx context.Context, params *apigateway.CreateDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateDomainNameOutput, error) {
	return f.createDomainName(params)
}

func (f *fakeClient) UpdateDomainName(ctx context.Context, params *apigateway.UpdateDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateDomainNameOutput, error) {
	return f.updateDomainName(params)
}

func (f *fakeClient) DeleteDomainName(ctx context.Context, params *apigateway.DeleteDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteDomainNameOutput, error) {
	return f.deleteDomainName(params)
}

func (f *fakeClient) TagResource(ctx context.Context, params *apigateway.TagResourceInput, optFns ...func(*apigateway.Options)) (*apigateway.TagResourceOutput, error) {
	return f.tagResource(params)
}

func (f *fakeClient) UntagResource(ctx context.Context, params *apigateway.UntagResourceInput, optFns ...func(*apigateway.Options)) (*apigateway.UntagResourceOutput, error) {
	return f.untagResource(params)
}

func (f *fakeClient) GetRestApi(ctx context.Context, params *apigateway.GetRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.GetRestApiOutput, error) {
	return f.getRestApi(params)
}

func (f *fakeClient) GetRestApis(ctx context.Context, params *apigateway.GetRestApisInput, optFns ...func(*apigateway.Options)) (*apigateway.GetRestApisOutput, error) {
	return f.getRestApis(params)
}

func (f *fakeClient) CreateRestApi(ctx context.Context, params *apigateway.CreateRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateRestApiOutput, error) {
	return f.createRestApi(params)
}

func (f *fakeClient) UpdateRestApi(ctx context.Context, params *apigateway.UpdateRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateRestApiOutput, error) {
	return f.updateRestApi(params)
}

func (f *fakeClient) DeleteRestApi(ctx context.Context, params *apigateway.DeleteRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteRestApiOutput, error) {
	return f.deleteRestApi(params)
}

func (f *fakeClient) GetUsagePlan(ctx context.Context, params *apigateway.GetUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.GetUsagePlanOutput, error) {
	return f.getUsagePlan(params)
}

func (f *fakeClient) GetUsagePlans(ctx context.Context, params *apigateway.GetUsagePlansInput, optFns ...func(*apigateway.Options)) (*apigateway.GetUsagePlansOutput, error) {
	return f.getUsagePlans(params)
}

func (f *fakeClient) CreateUsagePlan(ctx context.Context, params *apigateway.CreateUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateUsagePlanOutput, error) {
	return f.createUsagePlan(params)
}

func (f *fakeClient) UpdateUsagePlan(ctx context.Context, params *apigateway.UpdateUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateUsagePlanOutput, error) {
	return f.updateUsagePlan(params)
}

func (f *fakeClient) DeleteUsagePlan(ctx context.Context, params *apigateway.DeleteUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteUsagePlanOutput, error) {
	return f.deleteUsagePlan(params)
}

func (f *fakeClient) GetUsagePlanKey(ctx context.Context, params *apigateway.GetUsagePlanKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.GetUsagePlanKeyOutput, error) {
	return f.getUsagePlanKey(params)
}

func (f *fakeClient) CreateUsagePlanKey(ctx context.Context, params *apigateway.CreateUsagePlanKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateUsagePlanKeyOutput, error) {
	return f.createUsagePlanKey(params)
}

func (f *fakeClient) DeleteUsagePlanKey(ctx context.Context, params *apigateway.DeleteUsagePlanKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteUsagePlanKeyOutput, error) {
	return f.deleteUsagePlanKey(params)
}

func (f *fakeClient) GetBasePathMapping(ctx context.Context, params *apigateway.GetBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.GetBasePathMappingOutput, error) {
	return f.getBasePathMapping(params)
}

func (f *fakeClient) CreateBasePathMapping(ctx context.Context, params *apigateway.CreateBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateBasePathMappingOutput, error) {
	return f.createBasePathMapping(params)
}

func (f *fakeClient) UpdateBasePathMapping(ctx context.Context, params *apigateway.UpdateBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateBasePathMappingOutput, error) {
	return f.updateBasePathMapping(params)
}

func (f *fakeClient) DeleteBasePathMapping(ctx context.Context, params *apigateway.DeleteBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteBasePathMappingOutput, error) {
	return f.deleteBasePathMapping(params)
}

func (f *fakeClient) GetVpcLink(ctx context.Context, params *apigateway.GetVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.GetVpcLinkOutput, error) {
	return f.getVpcLink(params)
}

func (f *fakeClient) GetVpcLinks(ctx context.Context, params *apigateway.GetVpcLinksInput, optFns ...func(*apigateway.Options)) (*apigateway.GetVpcLinksOutput, error) {
	return f.getVpcLinks(params)
}

func (f *fakeClient) CreateVpcLink(ctx context.Context, params *apigateway.CreateVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateVpcLinkOutput, error) {
	return f.createVpcLink(params)
}

func (f *fakeClient) UpdateVpcLink(ctx context.Context, params *apigateway.UpdateVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateVpcLinkOutput, error) {
	return f.updateVpcLink(params)
}

func (f *fakeClient) DeleteVpcLink(ctx context.Context, params *apigateway.DeleteVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteVpcLinkOutput, error) {
	return f.deleteVpcLink(params)
}

func newTestReconciler(client Client) *Reconciler {
	return &Reconciler{
		client: client,
		region: "eu-central-1",
		log:    zap.NewNop().Sugar(),
	}
}

// notFoundErr mimics the modeled exception returned by the real service.
func notFoundErr() error {
	return &types.NotFoundException{Message: ptr.To("Invalid resource identifier specified")}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertError(t *testing.T, err error) {
	t.Helper()

	if err == nil {
		t.Fatal("expected an error, got none")
	}
}

func assertChanged(t *testing.T, changed, expected bool) {
	t.Helper()

	if changed != expected {
		t.Fatalf("expected changed=%v, got %v", expected, changed)
	}
}

// patchStrings flattens patch operations into comparable strings.
func patchStrings(ops []types.PatchOperation) []string {
	result := make([]string, 0, len(ops))
	for _, op := range ops {
		result = append(result, string(op.Op)+" "+ptr.Deref(op.Path, "")+"="+ptr.Deref(op.Value, ""))
	}

	return result
}
