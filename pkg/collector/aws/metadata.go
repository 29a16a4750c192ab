package aws

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/efs"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"k8s.io/client-go/kubernetes"

	"preflight/internal/model"
	k8scol "preflight/pkg/collector/k8s"
	"preflight/pkg/config"
	"preflight/pkg/logger"
)

// MetadataCollector reads the cloud-side surroundings of the batch jobs:
// EKS control plane and nodegroups, EFS file systems, the S3 buckets the
// jobs touch, and the IAM identity of the job service account. Each
// section is collected independently; a failed section is logged and
// left empty so the rest of the metadata still reaches the prediction.
type MetadataCollector struct {
	eks *eks.Client
	ec2 *ec2.Client
	efs *efs.Client
	s3  *s3.Client
	iam *iam.Client

	k8s kubernetes.Interface

	clusterName    string
	namespace      string
	serviceAccount string
	bucketFilter   string
}

// NewMetadataCollector builds the five service clients from one shared
// AWS config. bucketFilter narrows S3 enumeration to buckets whose name
// contains it, case-insensitive.
func NewMetadataCollector(sdkCfg aws.Config, k8sClient kubernetes.Interface, cluster *config.ClusterConfig, bucketFilter string) *MetadataCollector {
	return &MetadataCollector{
		eks:            eks.NewFromConfig(sdkCfg),
		ec2:            ec2.NewFromConfig(sdkCfg),
		efs:            efs.NewFromConfig(sdkCfg),
		s3:             s3.NewFromConfig(sdkCfg),
		iam:            iam.NewFromConfig(sdkCfg),
		k8s:            k8sClient,
		clusterName:    cluster.Name,
		namespace:      cluster.Namespace,
		serviceAccount: cluster.ServiceAccount,
		bucketFilter:   strings.ToLower(bucketFilter),
	}
}

// CollectMetadata gathers all sections. It never returns an error for a
// failed section; the returned metadata simply carries less context.
func (c *MetadataCollector) CollectMetadata(ctx context.Context) (*model.ClusterMetadata, error) {
	meta := &model.ClusterMetadata{
		EKS:         c.collectEKS(ctx),
		FileSystems: c.collectFileSystems(ctx),
		Buckets:     c.collectBuckets(ctx),
		Identity:    c.collectIdentity(ctx),
		CollectedAt: time.Now().UTC(),
	}
	return meta, nil
}

func (c *MetadataCollector) collectEKS(ctx context.Context) *model.EKSInfo {
	out, err := c.eks.DescribeCluster(ctx, &eks.DescribeClusterInput{
		Name: aws.String(c.clusterName),
	})
	if err != nil {
		logger.WarnCtx(ctx, "failed to describe EKS cluster %s: %v", c.clusterName, err)
		return nil
	}

	info := &model.EKSInfo{ClusterName: c.clusterName}
	if out.Cluster != nil {
		info.Version = aws.ToString(out.Cluster.Version)
		info.Status = string(out.Cluster.Status)
	}
	info.Nodegroups = c.collectNodegroups(ctx)
	return info
}

func (c *MetadataCollector) collectNodegroups(ctx context.Context) []model.NodegroupInfo {
	var names []string
	var nextToken *string
	for {
		out, err := c.eks.ListNodegroups(ctx, &eks.ListNodegroupsInput{
			ClusterName: aws.String(c.clusterName),
			NextToken:   nextToken,
		})
		if err != nil {
			logger.WarnCtx(ctx, "failed to list nodegroups for %s: %v", c.clusterName, err)
			return nil
		}
		names = append(names, out.Nodegroups...)
		if out.NextToken == nil {
			break
		}
		nextToken = out.NextToken
	}

	var groups []model.NodegroupInfo
	for _, name := range names {
		out, err := c.eks.DescribeNodegroup(ctx, &eks.DescribeNodegroupInput{
			ClusterName:   aws.String(c.clusterName),
			NodegroupName: aws.String(name),
		})
		if err != nil {
			logger.WarnCtx(ctx, "failed to describe nodegroup %s: %v", name, err)
			continue
		}
		if out.Nodegroup == nil {
			continue
		}

		ng := out.Nodegroup
		info := model.NodegroupInfo{
			Name:          name,
			Status:        string(ng.Status),
			InstanceTypes: ng.InstanceTypes,
		}
		if ng.ScalingConfig != nil {
			info.DesiredSize = aws.ToInt32(ng.ScalingConfig.DesiredSize)
		}
		groups = append(groups, info)
	}

	c.fillInstanceSpecs(ctx, groups)
	return groups
}

// fillInstanceSpecs resolves per-instance vCPU and memory for each
// nodegroup from its first instance type, one DescribeInstanceTypes call
// for all nodegroups.
func (c *MetadataCollector) fillInstanceSpecs(ctx context.Context, groups []model.NodegroupInfo) {
	seen := make(map[string]bool)
	var instanceTypes []ec2types.InstanceType
	for _, g := range groups {
		for _, t := range g.InstanceTypes {
			if !seen[t] {
				seen[t] = true
				instanceTypes = append(instanceTypes, ec2types.InstanceType(t))
			}
		}
	}
	if len(instanceTypes) == 0 {
		return
	}

	out, err := c.ec2.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
		InstanceTypes: instanceTypes,
	})
	if err != nil {
		logger.WarnCtx(ctx, "failed to describe instance types: %v", err)
		return
	}

	specs := make(map[string]ec2types.InstanceTypeInfo, len(out.InstanceTypes))
	for _, it := range out.InstanceTypes {
		specs[string(it.InstanceType)] = it
	}

	for i := range groups {
		if len(groups[i].InstanceTypes) == 0 {
			continue
		}
		it, ok := specs[groups[i].InstanceTypes[0]]
		if !ok {
			continue
		}
		if it.VCpuInfo != nil {
			groups[i].VCPUs = aws.ToInt32(it.VCpuInfo.DefaultVCpus)
		}
		if it.MemoryInfo != nil {
			groups[i].MemoryMiB = aws.ToInt64(it.MemoryInfo.SizeInMiB)
		}
	}
}

func (c *MetadataCollector) collectFileSystems(ctx context.Context) []model.FileSystemInfo {
	out, err := c.efs.DescribeFileSystems(ctx, &efs.DescribeFileSystemsInput{})
	if err != nil {
		logger.WarnCtx(ctx, "failed to describe EFS file systems: %v", err)
		return nil
	}

	var systems []model.FileSystemInfo
	for _, fs := range out.FileSystems {
		info := model.FileSystemInfo{
			ID:    aws.ToString(fs.FileSystemId),
			Name:  aws.ToString(fs.Name),
			State: string(fs.LifeCycleState),
		}
		if fs.SizeInBytes != nil {
			info.SizeBytes = fs.SizeInBytes.Value
		}

		mt, err := c.efs.DescribeMountTargets(ctx, &efs.DescribeMountTargetsInput{
			FileSystemId: fs.FileSystemId,
		})
		if err != nil {
			logger.WarnCtx(ctx, "failed to describe mount targets for %s: %v", info.ID, err)
		} else {
			info.MountTargets = len(mt.MountTargets)
		}
		systems = append(systems, info)
	}
	return systems
}

func (c *MetadataCollector) collectBuckets(ctx context.Context) []model.BucketInfo {
	out, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		logger.WarnCtx(ctx, "failed to list S3 buckets: %v", err)
		return nil
	}

	var buckets []model.BucketInfo
	for _, b := range out.Buckets {
		name := aws.ToString(b.Name)
		if !strings.Contains(strings.ToLower(name), c.bucketFilter) {
			continue
		}

		info := model.BucketInfo{Name: name}
		// GetBucketEncryption errors when the bucket has no encryption
		// configuration.
		if _, err := c.s3.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{
			Bucket: b.Name,
		}); err == nil {
			info.Encrypted = true
		}
		buckets = append(buckets, info)
	}
	return buckets
}

func (c *MetadataCollector) collectIdentity(ctx context.Context) *model.IdentityInfo {
	roleARN, err := k8scol.LookupRoleARN(ctx, c.k8s, c.namespace, c.serviceAccount)
	if err != nil {
		logger.WarnCtx(ctx, "failed to look up service account %s/%s: %v",
			c.namespace, c.serviceAccount, err)
		return nil
	}

	info := &model.IdentityInfo{
		ServiceAccount: c.serviceAccount,
		RoleARN:        roleARN,
	}
	if roleARN == "" {
		return info
	}

	roleName := roleARN[strings.LastIndex(roleARN, "/")+1:]
	out, err := c.iam.ListAttachedRolePolicies(ctx, &iam.ListAttachedRolePoliciesInput{
		RoleName: aws.String(roleName),
	})
	if err != nil {
		logger.WarnCtx(ctx, "failed to list attached policies for role %s: %v", roleName, err)
		return info
	}

	for _, p := range out.AttachedPolicies {
		info.Policies = append(info.Policies, aws.ToString(p.PolicyName))
	}
	return info
}
