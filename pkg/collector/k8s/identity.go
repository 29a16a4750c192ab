package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// roleARNAnnotation is the IRSA annotation EKS puts on serviceaccounts
const roleARNAnnotation = "eks.amazonaws.com/role-arn"

// LookupRoleARN reads the IAM role bound to a serviceaccount via IRSA.
// Returns empty when the serviceaccount has no role annotation.
func LookupRoleARN(ctx context.Context, client kubernetes.Interface, namespace, serviceAccount string) (string, error) {
	sa, err := client.CoreV1().ServiceAccounts(namespace).Get(ctx, serviceAccount, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get serviceaccount %s/%s: %w", namespace, serviceAccount, err)
	}
	return sa.Annotations[roleARNAnnotation], nil
}
