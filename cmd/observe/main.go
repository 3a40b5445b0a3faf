package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"pizzatorio.dev/internal/observerproto"
)

func main() {
	var (
		url   = flag.String("url", "ws://127.0.0.1:8390/v1/observe", "ws url")
		every = flag.Uint64("every", 30, "requested frame cadence in ticks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[observe] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		EveryTicks:      *every,
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame observerproto.KPIMsg
		if err := json.Unmarshal(msg, &frame); err != nil {
			continue
		}
		if frame.Type != observerproto.TypeKPI {
			continue
		}
		logger.Printf("tick=%d time=%.1fs money=$%d rep=%.1f hygiene=%.1f ontime=%.1f%% bottleneck=%.1f items=%d orders=%d deliveries=%d",
			frame.Tick, frame.Time, frame.Money, frame.Reputation, frame.Hygiene,
			frame.OntimeRate, frame.Bottleneck, frame.Items, frame.Orders, frame.Deliveries)
	}
}
