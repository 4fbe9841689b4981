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
	"time"
)

// DefaultBasePath is the literal value AWS uses for a base path mapping
// that is mounted at the root of a domain. It is a real value on the AWS
// side, not a placeholder of ours.
const DefaultBasePath = "(none)"

// APIKeySpec describes the desired state of an API Gateway API key.
// Either Name or ID must be set; ID asserts that the key already exists.
type APIKeySpec struct {
	ID                 string `json:"id,omitempty"`
	Name               string `json:"name,omitempty"`
	Description        string `json:"description,omitempty"`
	Enabled            bool   `json:"enabled,omitempty"`
	GenerateDistinctID bool   `json:"generateDistinctId,omitempty"`
	// Value is only honored during creation. API Gateway does not allow
	// changing the value of an existing key.
	Value string `json:"value,omitempty"`
}

// APIKey is the reshaped API Gateway response for an API key.
type APIKey struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Enabled         bool              `json:"enabled"`
	Value           string            `json:"value,omitempty"`
	StageKeys       []string          `json:"stageKeys,omitempty"`
	Tags            map[string]string `json:"tags,omitempty"`
	CreatedDate     *time.Time        `json:"createdDate,omitempty"`
	LastUpdatedDate *time.Time        `json:"lastUpdatedDate,omitempty"`
}

// DomainNameSpec describes the desired state of a custom domain name.
// Exactly one of CertificateARN and CertificateName must be set when the
// domain does not exist yet.
type DomainNameSpec struct {
	DomainName     string `json:"domainName"`
	CertificateARN string `json:"certificateArn,omitempty"`
	// CertificateName refers to a certificate previously uploaded to
	// API Gateway (the legacy, pre-ACM flow).
	CertificateName string `json:"certificateName,omitempty"`
	SecurityPolicy  string `json:"securityPolicy,omitempty"`
	// Tags is the desired tag set; nil means tags are left alone entirely.
	Tags map[string]string `json:"tags,omitempty"`
	// PurgeTags removes tags that exist on the domain but are not listed
	// in Tags.
	PurgeTags bool `json:"purgeTags,omitempty"`
}

// DomainName is the reshaped API Gateway response for a custom domain name.
type DomainName struct {
	DomainName             string            `json:"domainName"`
	CertificateARN         string            `json:"certificateArn,omitempty"`
	CertificateName        string            `json:"certificateName,omitempty"`
	SecurityPolicy         string            `json:"securityPolicy,omitempty"`
	DistributionDomainName string            `json:"distributionDomainName,omitempty"`
	RegionalDomainName     string            `json:"regionalDomainName,omitempty"`
	Status                 string            `json:"status,omitempty"`
	Tags                   map[string]string `json:"tags,omitempty"`
}

// RestAPISpec describes the desired state of a REST API. Either Name or ID
// must be set; ID asserts that the API already exists.
type RestAPISpec struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	// APIKeySource is one of HEADER or AUTHORIZER.
	APIKeySource     string   `json:"apiKeySource,omitempty"`
	BinaryMediaTypes []string `json:"binaryMediaTypes,omitempty"`
	// CloneFrom names another REST API (by name or ID) to clone during
	// creation.
	CloneFrom string `json:"cloneFrom,omitempty"`
	// EndpointTypes lists endpoint types (REGIONAL, EDGE, PRIVATE). Only a
	// single type is supported by API Gateway today.
	EndpointTypes          []string `json:"endpointTypes,omitempty"`
	MinimumCompressionSize *int32   `json:"minimumCompressionSize,omitempty"`
	Policy                 string   `json:"policy,omitempty"`
	Version                string   `json:"version,omitempty"`
}

// RestAPI is the reshaped API Gateway response for a REST API.
type RestAPI struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Description            string     `json:"description,omitempty"`
	APIKeySource           string     `json:"apiKeySource,omitempty"`
	BinaryMediaTypes       []string   `json:"binaryMediaTypes,omitempty"`
	EndpointTypes          []string   `json:"endpointTypes,omitempty"`
	MinimumCompressionSize *int32     `json:"minimumCompressionSize,omitempty"`
	Policy                 string     `json:"policy,omitempty"`
	Version                string     `json:"version,omitempty"`
	CreatedDate            *time.Time `json:"createdDate,omitempty"`
}

// APIStage attaches a usage plan to a deployed stage of a REST API.
type APIStage struct {
	RestAPIID string `json:"restApiId"`
	Stage     string `json:"stage"`
}

// UsagePlanSpec describes the desired state of a usage plan. Unset pointer
// fields mean "no opinion"; combined with the purge flags they decide
// whether throttle/quota settings are removed from an existing plan.
type UsagePlanSpec struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	APIStages   []APIStage `json:"apiStages,omitempty"`
	// PurgeAPIStages removes stages attached to the plan but not listed in
	// APIStages. Defaults to true.
	PurgeAPIStages     *bool    `json:"purgeApiStages,omitempty"`
	ThrottleBurstLimit *int32   `json:"throttleBurstLimit,omitempty"`
	ThrottleRateLimit  *float64 `json:"throttleRateLimit,omitempty"`
	// PurgeThrottle removes the throttle settings entirely when neither
	// throttle field is set. Defaults to true.
	PurgeThrottle *bool  `json:"purgeThrottle,omitempty"`
	QuotaLimit    *int32 `json:"quotaLimit,omitempty"`
	QuotaOffset   *int32 `json:"quotaOffset,omitempty"`
	// QuotaPeriod is one of DAY, WEEK or MONTH.
	QuotaPeriod string `json:"quotaPeriod,omitempty"`
	// PurgeQuota removes the quota settings entirely when no quota field is
	// set. Defaults to true.
	PurgeQuota *bool `json:"purgeQuota,omitempty"`
}

// ThrottleSettings mirrors the usage plan throttle subtree.
type ThrottleSettings struct {
	BurstLimit int32   `json:"burstLimit"`
	RateLimit  float64 `json:"rateLimit"`
}

// QuotaSettings mirrors the usage plan quota subtree.
type QuotaSettings struct {
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
	Period string `json:"period"`
}

// UsagePlan is the reshaped API Gateway response for a usage plan.
type UsagePlan struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	APIStages   []APIStage        `json:"apiStages,omitempty"`
	Throttle    *ThrottleSettings `json:"throttle,omitempty"`
	Quota       *QuotaSettings    `json:"quota,omitempty"`
}

// UsagePlanKeySpec attaches an API key to a usage plan. The key and the
// plan can each be referenced either by ID or by name.
type UsagePlanKeySpec struct {
	APIKeyID    string `json:"apiKeyId,omitempty"`
	APIKey      string `json:"apiKey,omitempty"`
	UsagePlanID string `json:"usagePlanId,omitempty"`
	UsagePlan   string `json:"usagePlan,omitempty"`
	// KeyType defaults to API_KEY, the only type API Gateway knows.
	KeyType string `json:"keyType,omitempty"`
}

// UsagePlanKey is the reshaped API Gateway response for a usage plan key.
type UsagePlanKey struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
}

// BasePathMappingSpec describes the desired state of a base path mapping.
// A mapping is identified by (DomainName, BasePath); the REST API can be
// referenced by ID or resolved from its name.
type BasePathMappingSpec struct {
	DomainName string `json:"domainName"`
	// BasePath defaults to "(none)", the AWS value for the domain root.
	BasePath  string `json:"basePath,omitempty"`
	RestAPIID string `json:"restApiId,omitempty"`
	RestAPI   string `json:"restApi,omitempty"`
	Stage     string `json:"stage,omitempty"`
}

func (s BasePathMappingSpec) basePath() string {
	if s.BasePath == "" {
		return DefaultBasePath
	}
	return s.BasePath
}

// BasePathMapping is the reshaped API Gateway response for a base path
// mapping.
type BasePathMapping struct {
	BasePath  string `json:"basePath"`
	RestAPIID string `json:"restApiId"`
	Stage     string `json:"stage,omitempty"`
}

// VPCLinkSpec describes the desired state of a VPC link. TargetARNs can
// only be set during creation; API Gateway does not allow changing them.
type VPCLinkSpec struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	TargetARNs  []string `json:"targetArns,omitempty"`
}

// VPCLink is the reshaped API Gateway response for a VPC link.
type VPCLink struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	TargetARNs    []string `json:"targetArns,omitempty"`
	Status        string   `json:"status,omitempty"`
	StatusMessage string   `json:"statusMessage,omitempty"`
}
