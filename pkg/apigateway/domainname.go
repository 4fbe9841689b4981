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

// EnsureDomainName creates or updates the custom domain name described by
// spec, including its tags, and returns the resulting domain plus whether
// anything was changed.
func (r *Reconciler) EnsureDomainName(ctx context.Context, spec DomainNameSpec) (*DomainName, bool, error) {
	if spec.DomainName == "" {
		return nil, false, errors.New("a domain name is required")
	}
	if spec.CertificateARN != "" && spec.CertificateName != "" {
		return nil, false, errors.New("certificateArn and certificateName are mutually exclusive")
	}

	domain, err := r.getDomainName(ctx, spec.DomainName)
	if err != nil {
		return nil, false, err
	}

	changed := false

	if domain == nil {
		if spec.CertificateARN == "" && spec.CertificateName == "" {
			return nil, false, errors.New("a certificate ARN or name is required to create a domain name")
		}

		r.log.Infow("Creating domain name", "domainName", spec.DomainName)

		if r.DryRun {
			return nil, true, nil
		}

		input := &apigateway.CreateDomainNameInput{
			DomainName:      ptr.To(spec.DomainName),
			SecurityPolicy:  types.SecurityPolicy(spec.SecurityPolicy),
			Tags:            spec.Tags,
			CertificateArn:  stringOrNil(spec.CertificateARN),
			CertificateName: stringOrNil(spec.CertificateName),
		}

		out, err := r.client.CreateDomainName(ctx, input)
		if err != nil {
			return nil, false, fmt.Errorf("failed to create domain name %q: %w", spec.DomainName, err)
		}

		return domainNameFromCreateOutput(out), true, nil
	}

	if spec.Tags != nil {
		tagsChanged, err := r.reconcileDomainNameTags(ctx, spec, domain)
		if err != nil {
			return nil, false, err
		}

		if tagsChanged {
			changed = true

			if !r.DryRun {
				// re-read so the returned domain carries the final tag set
				domain, err = r.getDomainName(ctx, spec.DomainName)
				if err != nil {
					return nil, false, err
				}
			}
		}
	}

	patch := &patchSet{}
	patch.replaceIfChanged("/certificateArn", spec.CertificateARN, domain.CertificateARN)
	patch.replaceIfChanged("/certificateName", spec.CertificateName, domain.CertificateName)
	patch.replaceIfChanged("/securityPolicy", spec.SecurityPolicy, domain.SecurityPolicy)

	if patch.empty() {
		return domain, changed, nil
	}

	r.log.Infow("Updating domain name", "domainName", spec.DomainName, "patches", len(patch.ops))

	if r.DryRun {
		return domain, true, nil
	}

	out, err := r.client.UpdateDomainName(ctx, &apigateway.UpdateDomainNameInput{
		DomainName:      ptr.To(spec.DomainName),
		PatchOperations: patch.ops,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to update domain name %q: %w", spec.DomainName, err)
	}

	return domainNameFromUpdateOutput(out), true, nil
}

// EnsureDomainNameAbsent deletes the domain name if it exists and returns
// the domain as it was before deletion.
func (r *Reconciler) EnsureDomainNameAbsent(ctx context.Context, spec DomainNameSpec) (*DomainName, bool, error) {
	domain, err := r.getDomainName(ctx, spec.DomainName)
	if err != nil {
		return nil, false, err
	}

	if domain == nil {
		return nil, false, nil
	}

	r.log.Infow("Deleting domain name", "domainName", spec.DomainName)

	if r.DryRun {
		return domain, true, nil
	}

	if _, err := r.client.DeleteDomainName(ctx, &apigateway.DeleteDomainNameInput{DomainName: ptr.To(spec.DomainName)}); err != nil {
		return nil, false, fmt.Errorf("failed to delete domain name %q: %w", spec.DomainName, err)
	}

	return domain, true, nil
}

func (r *Reconciler) reconcileDomainNameTags(ctx context.Context, spec DomainNameSpec, domain *DomainName) (bool, error) {
	toSet, toRemove := compareTags(domain.Tags, spec.Tags, spec.PurgeTags)
	if len(toSet) == 0 && len(toRemove) == 0 {
		return false, nil
	}

	arn := domainNameARN(r.region, spec.DomainName)

	r.log.Infow("Reconciling domain name tags", "domainName", spec.DomainName, "set", len(toSet), "remove", len(toRemove))

	if r.DryRun {
		return true, nil
	}

	if len(toSet) > 0 {
		if _, err := r.client.TagResource(ctx, &apigateway.TagResourceInput{
			ResourceArn: ptr.To(arn),
			Tags:        toSet,
		}); err != nil {
			return false, fmt.Errorf("failed to tag domain name %q: %w", spec.DomainName, err)
		}
	}

	if len(toRemove) > 0 {
		if _, err := r.client.UntagResource(ctx, &apigateway.UntagResourceInput{
			ResourceArn: ptr.To(arn),
			TagKeys:     toRemove,
		}); err != nil {
			return false, fmt.Errorf("failed to untag domain name %q: %w", spec.DomainName, err)
		}
	}

	return true, nil
}

// getDomainName looks up a domain name. A nil result means it does not
// exist.
func (r *Reconciler) getDomainName(ctx context.Context, domainName string) (*DomainName, error) {
	out, err := r.client.GetDomainName(ctx, &apigateway.GetDomainNameInput{DomainName: ptr.To(domainName)})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get domain name %q: %w", domainName, err)
	}

	return domainNameFromGetOutput(out), nil
}

func domainNameFromSDK(domain types.DomainName) *DomainName {
	return &DomainName{
		DomainName:             ptr.Deref(domain.DomainName, ""),
		CertificateARN:         ptr.Deref(domain.CertificateArn, ""),
		CertificateName:        ptr.Deref(domain.CertificateName, ""),
		SecurityPolicy:         string(domain.SecurityPolicy),
		DistributionDomainName: ptr.Deref(domain.DistributionDomainName, ""),
		RegionalDomainName:     ptr.Deref(domain.RegionalDomainName, ""),
		Status:                 string(domain.DomainNameStatus),
		Tags:                   domain.Tags,
	}
}

func domainNameFromGetOutput(out *apigateway.GetDomainNameOutput) *DomainName {
	return domainNameFromSDK(types.DomainName{
		DomainName:             out.DomainName,
		CertificateArn:         out.CertificateArn,
		CertificateName:        out.CertificateName,
		SecurityPolicy:         out.SecurityPolicy,
		DistributionDomainName: out.DistributionDomainName,
		RegionalDomainName:     out.RegionalDomainName,
		DomainNameStatus:       out.DomainNameStatus,
		Tags:                   out.Tags,
	})
}

func domainNameFromCreateOutput(out *apigateway.CreateDomainNameOutput) *DomainName {
	return domainNameFromSDK(types.DomainName{
		DomainName:             out.DomainName,
		CertificateArn:         out.CertificateArn,
		CertificateName:        out.CertificateName,
		SecurityPolicy:         out.SecurityPolicy,
		DistributionDomainName: out.DistributionDomainName,
		RegionalDomainName:     out.RegionalDomainName,
		DomainNameStatus:       out.DomainNameStatus,
		Tags:                   out.Tags,
	})
}

func domainNameFromUpdateOutput(out *apigateway.UpdateDomainNameOutput) *DomainName {
	return domainNameFromSDK(types.DomainName{
		DomainName:             out.DomainName,
		CertificateArn:         out.CertificateArn,
		CertificateName:        out.CertificateName,
		SecurityPolicy:         out.SecurityPolicy,
		DistributionDomainName: out.DistributionDomainName,
		RegionalDomainName:     out.RegionalDomainName,
		DomainNameStatus:       out.DomainNameStatus,
		Tags:                   out.Tags,
	})
}
