package main

// Small reference consumer: connects, prints version/capability info and
// the zones currently violated, then watches for state changes until
// interrupted. Not part of the library itself.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gosatel/integra"
	"github.com/gosatel/integra/pkg/proto"
)

type logSink struct{}

func (logSink) OnStatus(status integra.ClientStatus) {
	log.WithField("status", status).Info("probe: status changed")
}

func (logSink) OnStateDelta(source proto.NotifySource, event proto.NotifyEvent, deltas map[int]bool) {
	log.WithFields(log.Fields{"source": source, "event": event, "deltas": deltas}).Info("probe: state changed")
}

func (logSink) OnData(source proto.NotifySource, event proto.NotifyEvent, payload any) {
	log.WithFields(log.Fields{"source": source, "event": event, "payload": payload}).Info("probe: reading")
}

func (logSink) OnTroubles(region string, data any) {
	log.WithFields(log.Fields{"region": region, "data": data}).Info("probe: trouble")
}

func main() {
	log.SetLevel(log.DebugLevel)

	address := flag.String("address", "127.0.0.1:7094", "panel host:port, or device path with -backend serial")
	backend := flag.String("backend", "tcp", "transport backend: tcp or serial")
	key := flag.String("key", "", "integration key (enables encryption)")
	userCode := flag.String("code", "", "default user code for control commands")
	flag.Parse()

	opts := integra.DefaultClientOpts(*address)
	opts.Backend = *backend
	opts.IntegrationKey = *key
	opts.UserCode = *userCode

	client, err := integra.NewClient(opts, logSink{})
	if err != nil {
		log.WithError(err).Fatal("probe: bad client options")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := client.Connect(ctx, 0); err != nil {
		log.WithError(err).Fatal("probe: connect failed")
	}
	defer client.Disconnect()

	if v, err := client.ReadIntegraVersion(ctx); err != nil {
		log.WithError(err).Warn("probe: read integra version failed")
	} else {
		fmt.Printf("panel type %v, firmware %d.%d\n", v.PanelType, v.Major, v.Minor)
	}

	if v, err := client.ReadModuleVersion(ctx); err != nil {
		log.WithError(err).Warn("probe: read module version failed")
	} else {
		fmt.Printf("module firmware %d.%d, caps %v\n", v.Major, v.Minor, v.Caps)
	}

	if zones, err := client.ReadZonesViolation(ctx); err != nil {
		log.WithError(err).Warn("probe: read zones violation failed")
	} else {
		fmt.Printf("violated zones: %v\n", zones)
	}

	client.PollIntervalSet(5 * time.Second)
	<-ctx.Done()
}
