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
	"fmt"
	"sort"
)

// compareTags diffs the current tag set against the desired one and
// returns the tags that need to be written and the keys that need to be
// removed. Without purge, tags that exist on the resource but are not
// desired are left alone.
func compareTags(current, desired map[string]string, purge bool) (toSet map[string]string, toRemove []string) {
	toSet = map[string]string{}

	for key, value := range desired {
		if existing, ok := current[key]; !ok || existing != value {
			toSet[key] = value
		}
	}

	if purge {
		for key := range current {
			if _, ok := desired[key]; !ok {
				toRemove = append(toRemove, key)
			}
		}
		sort.Strings(toRemove)
	}

	return toSet, toRemove
}

// domainNameARN builds the ARN under which API Gateway tags custom domain
// names. The account ID is not part of these ARNs.
func domainNameARN(region, domainName string) string {
	return fmt.Sprintf("arn:aws:apigateway:%s::/domainnames/%s", region, domainName)
}
