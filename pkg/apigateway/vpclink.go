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
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"

	"k8s.io/utils/ptr"
)

const vpcLinkListLimit = 500

// EnsureVPCLink creates or updates the VPC link described by spec and
// returns the resulting link plus whether anything was changed. Target ARNs
// are immutable; VPC links stuck in DELETING or FAILED cannot be updated.
func (r *Reconciler) EnsureVPCLink(ctx context.Context, spec VPCLinkSpec) (*VPCLink, bool, error) {
	link, err := r.getVPCLink(ctx, spec)
	if err != nil {
		return nil, false, err
	}

	if link == nil {
		if spec.ID != "" {
			return nil, false, fmt.Errorf("no VPC link with ID %q exists", spec.ID)
		}

		return r.createVPCLink(ctx, spec)
	}

	switch types.VpcLinkStatus(link.Status) {
	case types.VpcLinkStatusDeleting:
		return nil, false, fmt.Errorf("VPC link %q is being deleted", link.ID)
	case types.VpcLinkStatusFailed:
		return nil, false, fmt.Errorf("VPC link %q is in a failed state: %s", link.ID, link.StatusMessage)
	}

	if len(spec.TargetARNs) > 0 && !slices.Equal(spec.TargetARNs, link.TargetARNs) {
		return nil, false, errors.New("the target ARNs of a VPC link cannot be changed after creation")
	}

	patch := &patchSet{}
	patch.replaceIfChanged("/name", spec.Name, link.Name)
	patch.replaceIfChanged("/description", spec.Description, link.Description)

	if patch.empty() {
		return link, false, nil
	}

	r.log.Infow("Updating VPC link", "name", link.Name, "id", link.ID, "patches", len(patch.ops))

	if r.DryRun {
		return link, true, nil
	}

	out, err := r.client.UpdateVpcLink(ctx, &apigateway.UpdateVpcLinkInput{
		VpcLinkId:       ptr.To(link.ID),
		PatchOperations: patch.ops,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to update VPC link %q: %w", link.ID, err)
	}

	return vpcLinkFromUpdateOutput(out), true, nil
}

// EnsureVPCLinkAbsent deletes the VPC link if it exists and returns the
// link as it was before deletion. Deletion is asynchronous on the AWS side;
// a link already in DELETING counts as absent.
func (r *Reconciler) EnsureVPCLinkAbsent(ctx context.Context, spec VPCLinkSpec) (*VPCLink, bool, error) {
	link, err := r.getVPCLink(ctx, spec)
	if err != nil {
		return nil, false, err
	}

	if link == nil || types.VpcLinkStatus(link.Status) == types.VpcLinkStatusDeleting {
		return nil, false, nil
	}

	r.log.Infow("Deleting VPC link", "name", link.Name, "id", link.ID)

	if r.DryRun {
		return link, true, nil
	}

	if _, err := r.client.DeleteVpcLink(ctx, &apigateway.DeleteVpcLinkInput{VpcLinkId: ptr.To(link.ID)}); err != nil {
		return nil, false, fmt.Errorf("failed to delete VPC link %q: %w", link.ID, err)
	}

	return link, true, nil
}

// ListVPCLinks returns all VPC links of the account, following pagination.
func (r *Reconciler) ListVPCLinks(ctx context.Context) ([]VPCLink, error) {
	var (
		links    []VPCLink
		position *string
	)

	for {
		out, err := r.client.GetVpcLinks(ctx, &apigateway.GetVpcLinksInput{
			Limit:    ptr.To[int32](vpcLinkListLimit),
			Position: position,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list VPC links: %w", err)
		}

		for _, link := range out.Items {
			links = append(links, *vpcLinkFromSDK(link))
		}

		if out.Position == nil {
			return links, nil
		}
		position = out.Position
	}
}

func (r *Reconciler) createVPCLink(ctx context.Context, spec VPCLinkSpec) (*VPCLink, bool, error) {
	if spec.Name == "" {
		return nil, false, errors.New("a name is required to create a VPC link")
	}
	if len(spec.TargetARNs) == 0 {
		return nil, false, errors.New("at least one target ARN is required to create a VPC link")
	}

	r.log.Infow("Creating VPC link", "name", spec.Name)

	if r.DryRun {
		return nil, true, nil
	}

	out, err := r.client.CreateVpcLink(ctx, &apigateway.CreateVpcLinkInput{
		Name:        ptr.To(spec.Name),
		Description: stringOrNil(spec.Description),
		TargetArns:  spec.TargetARNs,
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create VPC link %q: %w", spec.Name, err)
	}

	return vpcLinkFromCreateOutput(out), true, nil
}

// getVPCLink looks up a VPC link by ID or, failing that, by exact name
// match. A nil result means the link does not exist.
func (r *Reconciler) getVPCLink(ctx context.Context, spec VPCLinkSpec) (*VPCLink, error) {
	if spec.ID != "" {
		out, err := r.client.GetVpcLink(ctx, &apigateway.GetVpcLinkInput{VpcLinkId: ptr.To(spec.ID)})
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to get VPC link %q: %w", spec.ID, err)
		}

		return vpcLinkFromGetOutput(out), nil
	}

	if spec.Name == "" {
		return nil, errors.New("either a name or an ID is required to identify a VPC link")
	}

	links, err := r.ListVPCLinks(ctx)
	if err != nil {
		return nil, err
	}

	for i := range links {
		if links[i].Name == spec.Name {
			return &links[i], nil
		}
	}

	return nil, nil
}

func vpcLinkFromSDK(link types.VpcLink) *VPCLink {
	return &VPCLink{
		ID:            ptr.Deref(link.Id, ""),
		Name:          ptr.Deref(link.Name, ""),
		Description:   ptr.Deref(link.Description, ""),
		TargetARNs:    link.TargetArns,
		Status:        string(link.Status),
		StatusMessage: ptr.Deref(link.StatusMessage, ""),
	}
}

func vpcLinkFromGetOutput(out *apigateway.GetVpcLinkOutput) *VPCLink {
	return vpcLinkFromSDK(types.VpcLink{
		Id:            out.Id,
		Name:          out.Name,
		Description:   out.Description,
		TargetArns:    out.TargetArns,
		Status:        out.Status,
		StatusMessage: out.StatusMessage,
	})
}

func vpcLinkFromCreateOutput(out *apigateway.CreateVpcLinkOutput) *VPCLink {
	return vpcLinkFromSDK(types.VpcLink{
		Id:            out.Id,
		Name:          out.Name,
		Description:   out.Description,
		TargetArns:    out.TargetArns,
		Status:        out.Status,
		StatusMessage: out.StatusMessage,
	})
}

func vpcLinkFromUpdateOutput(out *apigateway.UpdateVpcLinkOutput) *VPCLink {
	return vpcLinkFromSDK(types.VpcLink{
		Id:            out.Id,
		Name:          out.Name,
		Description:   out.Description,
		TargetArns:    out.TargetArns,
		Status:        out.Status,
		StatusMessage: out.StatusMessage,
	})
}
