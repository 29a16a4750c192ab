// Package failure classifies raw batch-job failure reasons from the
// cluster into the risk categories predictions are scored in. The
// classification is attached to execution records at ingestion so the
// historical summary can tell an operator which dimension keeps biting.
package failure

import (
	"strings"

	"preflight/internal/model"
)

// PodSchedulingIndicators mark failures where the pod never got a node.
var PodSchedulingIndicators = []string{
	"Unschedulable",
	"FailedScheduling",
	"Insufficient cpu",
	"Insufficient memory",
	"node(s) didn't match",
	"TaintToleration",
	"BackoffLimitExceeded",
}

// EFSMountIndicators mark storage attach/mount failures.
var EFSMountIndicators = []string{
	"FailedMount",
	"MountVolume.SetUp failed",
	"efs",
	"stale file handle",
	"timeout expired waiting for volumes",
	"mount.nfs",
}

// MemoryOOMKillIndicators mark memory-kill terminations.
var MemoryOOMKillIndicators = []string{
	"OOMKilled",
	"OutOfMemory",
	"memory limit exceeded",
	"Exit Code: 137",
}

// IAMPermissionsIndicators mark cloud authorization failures.
var IAMPermissionsIndicators = []string{
	"AccessDenied",
	"UnauthorizedOperation",
	"is not authorized to perform",
	"AssumeRoleWithWebIdentity",
	"NoCredentialProviders",
	"403",
}

// DataQualityIndicators mark bad or missing input data.
var DataQualityIndicators = []string{
	"schema mismatch",
	"ValidationError",
	"corrupt",
	"no such file",
	"empty input",
	"malformed record",
}

// Classifier maps a raw (reason, message) pair onto one of the five risk
// categories. Lookup is layered: exact reason match, case-insensitive
// substring over the reason, then over the message.
type Classifier struct {
	indicators map[string][]string
}

// NewClassifier creates a classifier with the default indicator tables.
func NewClassifier() *Classifier {
	return &Classifier{
		indicators: map[string][]string{
			model.CategoryPodScheduling:  PodSchedulingIndicators,
			model.CategoryEFSMount:       EFSMountIndicators,
			model.CategoryMemoryOOMKill:  MemoryOOMKillIndicators,
			model.CategoryIAMPermissions: IAMPermissionsIndicators,
			model.CategoryDataQuality:    DataQualityIndicators,
		},
	}
}

// Classify returns the risk category key for a failure, or ("", false)
// when nothing matches. Categories are evaluated in their display order
// so classification is deterministic when several could match.
func (c *Classifier) Classify(reason, message string) (string, bool) {
	// Exact reason match first
	for _, category := range model.PredictionCategories() {
		for _, indicator := range c.indicators[category] {
			if reason == indicator {
				return category, true
			}
		}
	}

	reasonLower := strings.ToLower(reason)
	for _, category := range model.PredictionCategories() {
		for _, indicator := range c.indicators[category] {
			if reasonLower != "" && strings.Contains(reasonLower, strings.ToLower(indicator)) {
				return category, true
			}
		}
	}

	messageLower := strings.ToLower(message)
	for _, category := range model.PredictionCategories() {
		for _, indicator := range c.indicators[category] {
			if messageLower != "" && strings.Contains(messageLower, strings.ToLower(indicator)) {
				return category, true
			}
		}
	}

	return "", false
}

// AddIndicator extends a category's indicator table at runtime.
func (c *Classifier) AddIndicator(category, indicator string) {
	c.indicators[category] = append(c.indicators[category], indicator)
}
