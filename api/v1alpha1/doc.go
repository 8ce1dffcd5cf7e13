// Package v1alpha1 contains the resource property schemas of the custom
// resources served by this module, as they appear in a CloudFormation template.
package v1alpha1
