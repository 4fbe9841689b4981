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
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"

	"k8s.io/utils/ptr"
)

// patchSet accumulates the JSON-Patch style operations that API Gateway's
// Update* calls expect. All values are transported as strings, even
// booleans and numbers.
type patchSet struct {
	ops []types.PatchOperation
}

func (p *patchSet) add(path, value string) {
	p.ops = append(p.ops, types.PatchOperation{
		Op:    types.OpAdd,
		Path:  ptr.To(path),
		Value: ptr.To(value),
	})
}

func (p *patchSet) replace(path, value string) {
	p.ops = append(p.ops, types.PatchOperation{
		Op:    types.OpReplace,
		Path:  ptr.To(path),
		Value: ptr.To(value),
	})
}

func (p *patchSet) remove(path string) {
	p.ops = append(p.ops, types.PatchOperation{
		Op:   types.OpRemove,
		Path: ptr.To(path),
	})
}

func (p *patchSet) removeValue(path, value string) {
	p.ops = append(p.ops, types.PatchOperation{
		Op:    types.OpRemove,
		Path:  ptr.To(path),
		Value: ptr.To(value),
	})
}

// replaceIfChanged emits a replace op when a desired value is given and
// differs from the current one. An empty desired value means "no opinion".
func (p *patchSet) replaceIfChanged(path, desired, current string) {
	if desired != "" && desired != current {
		p.replace(path, desired)
	}
}

// upsert emits an add op when the field is not present on the resource yet
// and a replace op when it is present with a different value. API Gateway
// rejects replace ops on absent fields.
func (p *patchSet) upsert(path, desired, current string, present bool) {
	if desired == "" {
		return
	}

	if !present {
		p.add(path, desired)
		return
	}

	if desired != current {
		p.replace(path, desired)
	}
}

func (p *patchSet) empty() bool {
	return len(p.ops) == 0
}
