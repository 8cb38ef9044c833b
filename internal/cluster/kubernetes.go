package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// KubernetesController implements Controller against a deployment and its
// pods. Discovery lists pods by label selector; readiness is the pod's
// PodReady condition. The replica count lives on the deployment spec.
type KubernetesController struct {
	clientset  kubernetes.Interface
	logger     *slog.Logger
	namespace  string
	deployment string
	selector   string
	port       int
	mutex      sync.Mutex
}

func NewKubernetesController(
	clientset kubernetes.Interface,
	logger *slog.Logger,
	namespace string,
	deployment string,
	selector string,
	port int,
) *KubernetesController {
	return &KubernetesController{
		clientset:  clientset,
		logger:     logger,
		namespace:  namespace,
		deployment: deployment,
		selector:   selector,
		port:       port,
	}
}

// Endpoints lists the workload's pods and returns one endpoint per running
// pod with an assigned IP.
func (c *KubernetesController) Endpoints(ctx context.Context) ([]Endpoint, error) {
	pods, err := c.clientset.CoreV1().Pods(c.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: c.selector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	endpoints := make([]Endpoint, 0, len(pods.Items))
	for _, pod := range pods.Items {
		if pod.Status.PodIP == "" || pod.Status.Phase != corev1.PodRunning {
			continue
		}

		endpoints = append(endpoints, Endpoint{
			Address: net.JoinHostPort(pod.Status.PodIP, strconv.Itoa(c.port)),
			Ready:   isPodReady(&pod),
		})
	}

	return endpoints, nil
}

// Replicas reads the deployment's desired replica count.
func (c *KubernetesController) Replicas(ctx context.Context) (int32, error) {
	deployment, err := c.clientset.AppsV1().Deployments(c.namespace).Get(
		ctx,
		c.deployment,
		metav1.GetOptions{},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to get deployment: %w", err)
	}

	if deployment.Spec.Replicas == nil {
		return 0, nil
	}

	return *deployment.Spec.Replicas, nil
}

// Scale sets the deployment's desired replica count. Convergence is the
// cluster's business; the call only waits for the update acknowledgment.
func (c *KubernetesController) Scale(ctx context.Context, replicas int32) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	deployment, err := c.clientset.AppsV1().Deployments(c.namespace).Get(
		ctx,
		c.deployment,
		metav1.GetOptions{},
	)
	if err != nil {
		return fmt.Errorf("failed to get deployment: %w", err)
	}

	current := int32(0)
	if deployment.Spec.Replicas != nil {
		current = *deployment.Spec.Replicas
	}

	deployment.Spec.Replicas = &replicas

	if _, err := c.clientset.AppsV1().Deployments(c.namespace).Update(
		ctx,
		deployment,
		metav1.UpdateOptions{},
	); err != nil {
		return fmt.Errorf("failed to update deployment: %w", err)
	}

	c.logger.Info("Deployment scaled",
		slog.String("deployment", c.deployment),
		slog.Int("from", int(current)),
		slog.Int("to", int(replicas)))

	return nil
}

func isPodReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}

	return false
}
