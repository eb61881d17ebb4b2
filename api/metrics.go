package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakegate_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"result"})

	wakePackets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakegate_wake_packets_total",
		Help: "Wake-on-LAN packets sent by outcome.",
	}, []string{"result"})
)
