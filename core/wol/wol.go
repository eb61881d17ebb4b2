// Package wol sends Wake-on-LAN magic packets.
package wol

import (
	"fmt"
	"net"
)

const packetLen = 102

// BuildMagicPacket returns the fixed-format payload: six 0xFF bytes followed
// by the target MAC repeated sixteen times.
func BuildMagicPacket(macAddress string) ([]byte, error) {
	mac, err := net.ParseMAC(macAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid mac: %w", err)
	}
	if len(mac) != 6 {
		return nil, fmt.Errorf("invalid mac length: %d bytes (expected 6)", len(mac))
	}
	packet := make([]byte, packetLen)
	for i := 0; i < 6; i++ {
		packet[i] = 0xFF
	}
	for i := 6; i < packetLen; i += 6 {
		copy(packet[i:], mac)
	}
	return packet, nil
}

// Send broadcasts the magic packet over UDP. broadcastAddr is the network
// broadcast address with a port, e.g. "192.168.1.255:9", not the target's
// own IP.
func Send(macAddress, broadcastAddr string) error {
	packet, err := BuildMagicPacket(macAddress)
	if err != nil {
		return err
	}
	addr, err := net.ResolveUDPAddr("udp4", broadcastAddr)
	if err != nil {
		return fmt.Errorf("invalid broadcast address: %w", err)
	}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return fmt.Errorf("dial udp: %w", err)
	}
	defer conn.Close()
	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("send packet: %w", err)
	}
	return nil
}
