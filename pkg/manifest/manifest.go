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

// Package manifest loads the declarative description of the API Gateway
// resources apigwctl converges. A manifest can be split over multiple
// files; later files override earlier ones.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	goyaml "gopkg.in/yaml.v3"
	sigyaml "sigs.k8s.io/yaml"

	"github.com/apigw-tools/apigwctl/pkg/apigateway"
)

// Manifest is the root document. All resource lists are optional.
type Manifest struct {
	// Region is the AWS region to converge against. A --region flag or the
	// AWS_REGION environment variable override it.
	Region string `json:"region,omitempty"`

	RestAPIs         []apigateway.RestAPISpec         `json:"restApis,omitempty"`
	VPCLinks         []apigateway.VPCLinkSpec         `json:"vpcLinks,omitempty"`
	DomainNames      []apigateway.DomainNameSpec      `json:"domainNames,omitempty"`
	APIKeys          []apigateway.APIKeySpec          `json:"apiKeys,omitempty"`
	UsagePlans       []apigateway.UsagePlanSpec       `json:"usagePlans,omitempty"`
	UsagePlanKeys    []apigateway.UsagePlanKeySpec    `json:"usagePlanKeys,omitempty"`
	BasePathMappings []apigateway.BasePathMappingSpec `json:"basePathMappings,omitempty"`
}

// Load reads and merges the given manifest files. Later files override
// earlier ones key by key; unknown fields are rejected so that typos do
// not silently drop resources.
func Load(filenames []string) (*Manifest, error) {
	if len(filenames) == 0 {
		return nil, errors.New("no manifest files given")
	}

	merged := make(map[string]any)

	for _, filename := range filenames {
		if filename == "" {
			continue
		}

		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}

		current := make(map[string]any)
		if err := goyaml.Unmarshal(content, &current); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filename, err)
		}

		// mergo.WithOverride ensures that values from "current"
		// overwrite existing values in "merged"
		if err := mergo.Merge(&merged, current, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge values from %s: %w", filename, err)
		}
	}

	var buf bytes.Buffer
	encoder := goyaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(merged); err != nil {
		return nil, fmt.Errorf("failed to encode merged manifest: %w", err)
	}

	manifest := &Manifest{}
	if err := sigyaml.UnmarshalStrict(buf.Bytes(), manifest); err != nil {
		return nil, fmt.Errorf("not a valid manifest: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	return manifest, nil
}

// Validate checks that every resource carries enough fields to be
// identified. Semantic validation beyond that (certificate requirements,
// immutable fields) happens during reconciliation, where the current
// state is known.
func (m *Manifest) Validate() error {
	for i, api := range m.RestAPIs {
		if api.Name == "" && api.ID == "" {
			return fmt.Errorf("restApis[%d]: either a name or an ID is required", i)
		}
	}

	for i, link := range m.VPCLinks {
		if link.Name == "" && link.ID == "" {
			return fmt.Errorf("vpcLinks[%d]: either a name or an ID is required", i)
		}
	}

	for i, domain := range m.DomainNames {
		if domain.DomainName == "" {
			return fmt.Errorf("domainNames[%d]: a domain name is required", i)
		}
		if domain.CertificateARN != "" && domain.CertificateName != "" {
			return fmt.Errorf("domainNames[%d]: certificateArn and certificateName are mutually exclusive", i)
		}
	}

	for i, key := range m.APIKeys {
		if key.Name == "" && key.ID == "" {
			return fmt.Errorf("apiKeys[%d]: either a name or an ID is required", i)
		}
	}

	for i, plan := range m.UsagePlans {
		if plan.Name == "" && plan.ID == "" {
			return fmt.Errorf("usagePlans[%d]: either a name or an ID is required", i)
		}
		for j, stage := range plan.APIStages {
			if stage.RestAPIID == "" || stage.Stage == "" {
				return fmt.Errorf("usagePlans[%d].apiStages[%d]: a REST API ID and a stage are required", i, j)
			}
		}
	}

	for i, key := range m.UsagePlanKeys {
		if key.APIKey == "" && key.APIKeyID == "" {
			return fmt.Errorf("usagePlanKeys[%d]: an API key reference is required", i)
		}
		if key.UsagePlan == "" && key.UsagePlanID == "" {
			return fmt.Errorf("usagePlanKeys[%d]: a usage plan reference is required", i)
		}
	}

	for i, mapping := range m.BasePathMappings {
		if mapping.DomainName == "" {
			return fmt.Errorf("basePathMappings[%d]: a domain name is required", i)
		}
		if mapping.RestAPI == "" && mapping.RestAPIID == "" {
			return fmt.Errorf("basePathMappings[%d]: a REST API reference is required", i)
		}
	}

	return nil
}

// Empty reports whether the manifest contains no resources at all.
func (m *Manifest) Empty() bool {
	return len(m.RestAPIs) == 0 &&
		len(m.VPCLinks) == 0 &&
		len(m.DomainNames) == 0 &&
		len(m.APIKeys) == 0 &&
		len(m.UsagePlans) == 0 &&
		len(m.UsagePlanKeys) == 0 &&
		len(m.BasePathMappings) == 0
}
