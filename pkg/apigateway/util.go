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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/aws/smithy-go"
)

const notFoundErrorCode = "NotFoundException"

// isNotFound reports whether err is API Gateway's way of saying that the
// requested resource does not exist. The reconcilers map this to "absent"
// instead of failing.
func isNotFound(err error) bool {
	var notFound *types.NotFoundException
	if errors.As(err, &notFound) {
		return true
	}

	// Some operations surface the code without the modeled exception type.
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == notFoundErrorCode
}

// RenderJSON returns a compact JSON rendering of a reshaped resource, for
// human consumption in log output.
func RenderJSON(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}

	return string(encoded)
}
