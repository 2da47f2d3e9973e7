package main

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/jackpal/gateway"
	"github.com/mdp/qrterminal/v3"
)

// printQR renders the server URL as a terminal QR code so a phone or device on
// the same network can open it.
func printQR(w io.Writer, host string, addr net.Addr) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return
	}

	url := serverURL(host, tcpAddr.Port)
	_, _ = fmt.Fprintf(w, "\nScan to open %s\n", url)
	qrterminal.GenerateHalfBlock(url, qrterminal.M, w)
}

// serverURL builds the URL clients on the LAN should use. A wildcard bind
// address is replaced with the address of the interface facing the default gateway.
func serverURL(host string, port int) string {
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = lanAddress()
	}

	hostPort := net.JoinHostPort(host, strconv.Itoa(port))
	if port == 80 {
		hostPort = host
		if ip := net.ParseIP(host); ip != nil && ip.To4() == nil {
			hostPort = "[" + host + "]"
		}
	}
	return "http://" + hostPort + "/"
}

func lanAddress() string {
	ip, err := gateway.DiscoverInterface()
	if err != nil || ip == nil {
		slog.Warn("could not discover LAN address, using loopback", "err", err)
		return "127.0.0.1"
	}
	return ip.String()
}
