package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"autoscaler/cmd/autoscaler/app/options"
	"autoscaler/pkg/aggregator"
	"autoscaler/pkg/apiserver"
	"autoscaler/pkg/config"
	"autoscaler/pkg/consumer"
	"autoscaler/pkg/engine"
	"autoscaler/pkg/etcdstore"
	"autoscaler/pkg/klog"
	"autoscaler/pkg/manager"
	"autoscaler/pkg/messaging"
	"autoscaler/pkg/producer"
	"autoscaler/pkg/scaling"
)

func NewAutoscalerCommand() *cobra.Command {
	opts := options.NewOptions()
	cmd := &cobra.Command{
		Use: "autoscaler",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.Config()
			if err != nil {
				return err
			}
			return Run(c)
		},
	}
	cmd.Flags().AddFlagSet(opts.Flags())
	return cmd
}

// Run wires every component together and blocks until SIGINT or SIGTERM.
func Run(c *config.Config) error {
	klog.SetLogFile(c.LogFile)
	klog.SetDebug(c.Debug)

	store, err := etcdstore.NewEtcdStore(c.Etcd.Endpoints, c.Etcd.Timeout())
	if err != nil {
		return err
	}
	defer store.Close()
	blueprintStore := etcdstore.NewBlueprintStore(store)

	qConfig := &messaging.QConfig{
		User:          c.Queue.User,
		Password:      c.Queue.Password,
		Host:          c.Queue.Host,
		Port:          c.Queue.Port,
		MaxRetry:      c.Queue.MaxRetry,
		RetryInterval: c.Queue.RetryInterval(),
	}
	publisher, err := messaging.NewPublisher(qConfig)
	if err != nil {
		return err
	}
	defer publisher.CloseConnection()
	subscriber, err := messaging.NewSubscriber(qConfig)
	if err != nil {
		return err
	}
	defer subscriber.CloseConnection()

	metricProducer := producer.NewMetricProducer(publisher)
	appManager := manager.NewScalableAppManager(blueprintStore, metricProducer, c.Scaler, c.Defaults)
	if err := appManager.LoadFromStore(); err != nil {
		return err
	}

	tracker := consumer.NewInstanceCountTracker()
	containerConsumer := consumer.NewContainerMetricConsumer(appManager, subscriber)
	httpConsumer := consumer.NewHttpMetricConsumer(appManager, subscriber)
	instanceConsumer := consumer.NewInstanceMetricConsumer(appManager, subscriber, tracker)
	scalingLogConsumer := consumer.NewScalingLogConsumer(appManager, subscriber)
	if err := containerConsumer.Start(); err != nil {
		return err
	}
	if err := httpConsumer.Start(); err != nil {
		return err
	}
	if err := instanceConsumer.Start(); err != nil {
		return err
	}
	if err := scalingLogConsumer.Start(); err != nil {
		return err
	}
	defer containerConsumer.Stop()
	defer httpConsumer.Stop()
	defer instanceConsumer.Stop()
	defer scalingLogConsumer.Stop()

	metricAggregator := aggregator.NewAggregator(appManager, metricProducer, c.Scaler.AggregatorInterval())
	metricAggregator.Run()
	defer metricAggregator.Stop()

	engineClient := engine.NewClient(c.Engine)
	checker := scaling.NewChecker(c.Scaler.StaticScalingSize, c.Scaler.ScalerInterval())
	scaler := scaling.NewScaler(appManager, engineClient, metricProducer, checker, c.Scaler.ScalerInterval())
	scaler.Run()
	defer scaler.Stop()

	server := apiserver.NewServer(c.Http.Port, c.Broker.Secret, appManager,
		engineClient, c.Scaler.UpdateAppNameAtBinding, tracker)
	go func() {
		if err := server.Run(); err != nil {
			klog.Fatalf("error running the management api : %s\n", err.Error())
		}
	}()

	klog.Infof("autoscaler running, managing %d apps\n", appManager.Size())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	<-signalCh
	klog.Infof("shutting down ...\n")
	return nil
}
