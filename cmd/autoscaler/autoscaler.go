package main

import (
	"autoscaler/cmd/autoscaler/app"
	"autoscaler/pkg/klog"
)

func main() {
	cmd := app.NewAutoscalerCommand()
	if err := cmd.Execute(); err != nil {
		klog.Fatalf("autoscaler exited with error : %s\n", err.Error())
	}
}
