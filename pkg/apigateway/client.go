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

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"go.uber.org/zap"

	"k8s.io/utils/ptr"
)

// maxRetryAttempts replaces the SDK default of 3; API Gateway's control
// plane throttles aggressively and converging several resources in a row
// routinely trips the limit.
const maxRetryAttempts = 10

// Client is the subset of the API Gateway control plane used by the
// reconcilers. *apigateway.Client satisfies it; tests provide fakes.
type Client interface {
	GetApiKey(ctx context.Context, params *apigateway.GetApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.GetApiKeyOutput, error)
	GetApiKeys(ctx context.Context, params *apigateway.GetApiKeysInput, optFns ...func(*apigateway.Options)) (*apigateway.GetApiKeysOutput, error)
	CreateApiKey(ctx context.Context, params *apigateway.CreateApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateApiKeyOutput, error)
	UpdateApiKey(ctx context.Context, params *apigateway.UpdateApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateApiKeyOutput, error)
	DeleteApiKey(ctx context.Context, params *apigateway.DeleteApiKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteApiKeyOutput, error)

	GetDomainName(ctx context.Context, params *apigateway.GetDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.GetDomainNameOutput, error)
	CreateDomainName(ctx context.Context, params *apigateway.CreateDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateDomainNameOutput, error)
	UpdateDomainName(ctx context.Context, params *apigateway.UpdateDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateDomainNameOutput, error)
	DeleteDomainName(ctx context.Context, params *apigateway.DeleteDomainNameInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteDomainNameOutput, error)
	TagResource(ctx context.Context, params *apigateway.TagResourceInput, optFns ...func(*apigateway.Options)) (*apigateway.TagResourceOutput, error)
	UntagResource(ctx context.Context, params *apigateway.UntagResourceInput, optFns ...func(*apigateway.Options)) (*apigateway.UntagResourceOutput, error)

	GetRestApi(ctx context.Context, params *apigateway.GetRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.GetRestApiOutput, error)
	GetRestApis(ctx context.Context, params *apigateway.GetRestApisInput, optFns ...func(*apigateway.Options)) (*apigateway.GetRestApisOutput, error)
	CreateRestApi(ctx context.Context, params *apigateway.CreateRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateRestApiOutput, error)
	UpdateRestApi(ctx context.Context, params *apigateway.UpdateRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateRestApiOutput, error)
	DeleteRestApi(ctx context.Context, params *apigateway.DeleteRestApiInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteRestApiOutput, error)

	GetUsagePlan(ctx context.Context, params *apigateway.GetUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.GetUsagePlanOutput, error)
	GetUsagePlans(ctx context.Context, params *apigateway.GetUsagePlansInput, optFns ...func(*apigateway.Options)) (*apigateway.GetUsagePlansOutput, error)
	CreateUsagePlan(ctx context.Context, params *apigateway.CreateUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateUsagePlanOutput, error)
	UpdateUsagePlan(ctx context.Context, params *apigateway.UpdateUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateUsagePlanOutput, error)
	DeleteUsagePlan(ctx context.Context, params *apigateway.DeleteUsagePlanInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteUsagePlanOutput, error)

	GetUsagePlanKey(ctx context.Context, params *apigateway.GetUsagePlanKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.GetUsagePlanKeyOutput, error)
	CreateUsagePlanKey(ctx context.Context, params *apigateway.CreateUsagePlanKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateUsagePlanKeyOutput, error)
	DeleteUsagePlanKey(ctx context.Context, params *apigateway.DeleteUsagePlanKeyInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteUsagePlanKeyOutput, error)

	GetBasePathMapping(ctx context.Context, params *apigateway.GetBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.GetBasePathMappingOutput, error)
	CreateBasePathMapping(ctx context.Context, params *apigateway.CreateBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateBasePathMappingOutput, error)
	UpdateBasePathMapping(ctx context.Context, params *apigateway.UpdateBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateBasePathMappingOutput, error)
	DeleteBasePathMapping(ctx context.Context, params *apigateway.DeleteBasePathMappingInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteBasePathMappingOutput, error)

	GetVpcLink(ctx context.Context, params *apigateway.GetVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.GetVpcLinkOutput, error)
	GetVpcLinks(ctx context.Context, params *apigateway.GetVpcLinksInput, optFns ...func(*apigateway.Options)) (*apigateway.GetVpcLinksOutput, error)
	CreateVpcLink(ctx context.Context, params *apigateway.CreateVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.CreateVpcLinkOutput, error)
	UpdateVpcLink(ctx context.Context, params *apigateway.UpdateVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.UpdateVpcLinkOutput, error)
	DeleteVpcLink(ctx context.Context, params *apigateway.DeleteVpcLinkInput, optFns ...func(*apigateway.Options)) (*apigateway.DeleteVpcLinkOutput, error)
}

var _ Client = (*apigateway.Client)(nil)

// ClientSet bundles the API Gateway client with the settings needed to
// construct resource ARNs.
type ClientSet struct {
	APIGateway Client
	Region     string
}

// GetClientSet returns a ClientSet for the given credentials. Empty
// accessKeyID/secretAccessKey fall back to the SDK's default credential
// chain (environment, shared config, IMDS). A non-empty endpoint overrides
// the AWS API Gateway endpoint, which is how the integration tests talk to
// LocalStack.
func GetClientSet(ctx context.Context, accessKeyID, secretAccessKey, region, endpoint string) (*ClientSet, error) {
	return getClientSet(ctx, accessKeyID, secretAccessKey, region, endpoint)
}

func getClientSet(ctx context.Context, accessKeyID, secretAccessKey, region, endpoint string) (*ClientSet, error) {
	if region == "" {
		return nil, errors.New("no region given")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), maxRetryAttempts)
		}),
	}

	if accessKeyID != "" || secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := apigateway.NewFromConfig(cfg, func(o *apigateway.Options) {
		if endpoint != "" {
			o.BaseEndpoint = ptr.To(endpoint)
		}
	})

	return &ClientSet{
		APIGateway: client,
		Region:     region,
	}, nil
}

// Reconciler converges API Gateway resources to their desired state. When
// DryRun is set, lookups still happen but no mutating call is issued; the
// changed result reflects the decision that would have been taken.
type Reconciler struct {
	client Client
	region string
	log    *zap.SugaredLogger

	DryRun bool
}

// NewReconciler returns a Reconciler using the given ClientSet.
func NewReconciler(cs *ClientSet, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{
		client: cs.APIGateway,
		region: cs.Region,
		log:    log,
	}
}
