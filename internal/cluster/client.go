package cluster

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientset builds a Kubernetes clientset, preferring in-cluster
// configuration and falling back to the local kubeconfig.
func NewClientset(logger *slog.Logger) (*kubernetes.Clientset, error) {
	config, err := buildConfig(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return clientset, nil
}

func buildConfig(logger *slog.Logger) (*rest.Config, error) {
	config, err := rest.InClusterConfig()
	if err == nil {
		logger.Info("Using in-cluster Kubernetes configuration")
		return config, nil
	}

	kubeconfig := kubeconfigPath()
	if kubeconfig == "" {
		return nil, fmt.Errorf("could not find kubeconfig and not running in-cluster")
	}

	logger.Info("Using local kubeconfig", slog.String("path", kubeconfig))
	config, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	return config, nil
}

func kubeconfigPath() string {
	if kubeconfig := os.Getenv("KUBECONFIG"); kubeconfig != "" {
		return kubeconfig
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".kube", "config")
}
