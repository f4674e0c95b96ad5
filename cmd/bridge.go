// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Nexcell Networks

package cmd

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/nexcell/towerwatch/pkg/bscp"
)

var (
	bridgeListen   string
	bridgeAuthUser string

	bridgeMQTTBroker   string
	bridgeMQTTTopic    string
	bridgeMQTTClientID string
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Bridge decoded frames to WebSocket and MQTT consumers",
	Long: `Serve decoded BSCP frames as JSON over a WebSocket endpoint, and
optionally publish metric values to an MQTT broker.

Every frame decoded from the station link is fanned out to all connected
WebSocket clients on /ws. With --mqtt-broker, metric values are additionally
published to <topic>/metrics/<NAME> and status updates to <topic>/status.

With --auth-user, WebSocket clients must present HTTP Basic credentials. The
password is read from the TOWERWATCH_PASSWORD environment variable, or
prompted interactively if not set. A --password flag is intentionally not
provided to avoid leaking credentials in shell history.

Example:
  towerwatch bridge --station lab-rack-2 --listen :8600 \
      --mqtt-broker tcp://broker.nexcell.net:1883 --mqtt-topic nexcell/rack2`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().StringVar(&bridgeListen, "listen", ":8600", "HTTP listen address for the WebSocket endpoint")
	bridgeCmd.Flags().StringVar(&bridgeAuthUser, "auth-user", "", "Require HTTP Basic auth with this username")
	bridgeCmd.Flags().StringVar(&bridgeMQTTBroker, "mqtt-broker", "", "MQTT broker URL (e.g. tcp://host:1883)")
	bridgeCmd.Flags().StringVar(&bridgeMQTTTopic, "mqtt-topic", "towerwatch", "MQTT topic prefix")
	bridgeCmd.Flags().StringVar(&bridgeMQTTClientID, "mqtt-client-id", "towerwatch-bridge", "MQTT client identifier")
}

// frameJSON is the wire shape served to WebSocket clients. Serialization for
// external consumers lives here, not in the protocol package.
type frameJSON struct {
	Timestamp time.Time `json:"timestamp"`
	Type      uint8     `json:"type"`
	TypeName  string    `json:"type_name"`
	Category  string    `json:"category"`
	Sequence  uint8     `json:"sequence"`

	Metrics []metricJSON       `json:"metrics,omitempty"`
	Status  *statusJSON        `json:"status,omitempty"`
	Result  *commandResultJSON `json:"result,omitempty"`
}

type metricJSON struct {
	Code  uint8   `json:"code"`
	Name  string  `json:"name"`
	Value float32 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

type statusJSON struct {
	Status   string `json:"status"`
	Uptime   uint32 `json:"uptime_seconds"`
	Errors   uint16 `json:"errors"`
	Warnings uint16 `json:"warnings"`
}

type commandResultJSON struct {
	Success    bool   `json:"success"`
	ReturnCode uint8  `json:"return_code"`
	Output     string `json:"output,omitempty"`
}

// encodeFrameJSON converts a decoded message to its JSON wire shape.
func encodeFrameJSON(msg *bscp.Message) frameJSON {
	out := frameJSON{
		Timestamp: msg.Timestamp,
		Type:      msg.Type,
		TypeName:  bscp.FormatMessageType(msg.Type),
		Category:  msg.Category().String(),
		Sequence:  msg.Sequence,
	}

	switch msg.Type {
	case bscp.MsgMetricsResponse, bscp.MsgEventMetricReport:
		metrics, err := bscp.DecodeMetrics(msg.Payload)
		if err != nil {
			break
		}
		for _, m := range metrics {
			out.Metrics = append(out.Metrics, metricJSON{
				Code:  m.Type,
				Name:  bscp.MetricName(m.Type),
				Value: m.Value,
				Unit:  bscp.MetricUnit(m.Type),
			})
		}

	case bscp.MsgStatusResponse:
		if status, err := bscp.DecodeStatus(msg.Payload); err == nil {
			out.Status = &statusJSON{
				Status:   bscp.StatusName(status.Status),
				Uptime:   status.Uptime,
				Errors:   status.Errors,
				Warnings: status.Warnings,
			}
		}

	case bscp.MsgExecResponse:
		if result, err := bscp.DecodeCommandResult(msg.Payload); err == nil {
			out.Result = &commandResultJSON{
				Success:    result.Succeeded(),
				ReturnCode: result.ReturnCode,
				Output:     string(result.Output),
			}
		}
	}

	return out
}

// hub fans frames out to connected WebSocket clients.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	log     *slog.Logger
}

func newHub(log *slog.Logger) *hub {
	return &hub{
		clients: make(map[*websocket.Conn]struct{}),
		log:     log,
	}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
	h.log.Info("client connected", "remote", conn.RemoteAddr().String(), "clients", len(h.clients))
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		h.log.Info("client disconnected", "remote", conn.RemoteAddr().String(), "clients", len(h.clients))
	}
}

// broadcast sends a JSON payload to every client, dropping clients whose
// writes fail.
func (h *hub) broadcast(data []byte) {
	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			dead = append(dead, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range dead {
		h.remove(conn)
	}
}

var bridgeUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The bridge is an operator tool on a trusted network; clients are
	// dashboards and scripts, not browsers with ambient credentials.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// basicAuth wraps a handler with HTTP Basic verification.
func basicAuth(user, password string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqUser, reqPass, ok := r.BasicAuth()
		userOK := subtle.ConstantTimeCompare([]byte(reqUser), []byte(user)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(reqPass), []byte(password)) == 1
		if !ok || !userOK || !passOK {
			w.Header().Set("WWW-Authenticate", `Basic realm="towerwatch"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// connectMQTT connects to the broker and returns the client.
func connectMQTT(log *slog.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(bridgeMQTTBroker).
		SetClientID(bridgeMQTTClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)
	opts.OnConnect = func(mqtt.Client) {
		log.Info("mqtt connected", "broker", bridgeMQTTBroker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "error", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}

// publishMQTT pushes metric and status values to the broker.
func publishMQTT(client mqtt.Client, frame frameJSON) {
	for _, m := range frame.Metrics {
		topic := bridgeMQTTTopic + "/metrics/" + m.Name
		payload := strconv.FormatFloat(float64(m.Value), 'f', -1, 32)
		client.Publish(topic, 0, true, payload)
	}
	if frame.Status != nil {
		if data, err := json.Marshal(frame.Status); err == nil {
			client.Publish(bridgeMQTTTopic+"/status", 0, true, data)
		}
	}
}

func runBridge(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var authPassword string
	if bridgeAuthUser != "" {
		var err error
		authPassword, err = GetPassword()
		if err != nil {
			return err
		}
	}

	tr, connInfo, err := OpenTransport()
	if err != nil {
		return err
	}
	defer tr.Close()
	log.Info("station link open", "connection", connInfo)

	var mqttClient mqtt.Client
	if bridgeMQTTBroker != "" {
		mqttClient, err = connectMQTT(log)
		if err != nil {
			return err
		}
		defer mqttClient.Disconnect(250)
	}

	h := newHub(log)

	// Station reader: decode frames and fan them out.
	go func() {
		parser := bscp.NewParser()
		buf := make([]byte, 4096)
		for {
			n, err := tr.Recv(buf, recvTimeout)
			if err != nil {
				log.Error("station link lost", "error", err)
				os.Exit(1)
			}
			for _, msg := range parser.Feed(buf[:n]) {
				frame := encodeFrameJSON(msg)
				data, err := json.Marshal(frame)
				if err != nil {
					log.Error("marshal frame", "error", err)
					continue
				}
				h.broadcast(data)
				if mqttClient != nil {
					publishMQTT(mqttClient, frame)
				}
			}
		}
	}()

	wsHandler := func(w http.ResponseWriter, r *http.Request) {
		conn, err := bridgeUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		h.add(conn)

		// Drain client frames so pings/closes are processed; the bridge
		// is one-way.
		go func() {
			defer h.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}

	if bridgeAuthUser != "" {
		http.HandleFunc("/ws", basicAuth(bridgeAuthUser, authPassword, wsHandler))
	} else {
		http.HandleFunc("/ws", wsHandler)
	}

	log.Info("bridge listening", "addr", bridgeListen, "auth", bridgeAuthUser != "", "mqtt", bridgeMQTTBroker != "")
	return http.ListenAndServe(bridgeListen, nil)
}
