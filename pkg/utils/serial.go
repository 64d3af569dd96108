package utils

import (
	"fmt"
	"fpgaterm/internal/logger"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialPortInfo 串口信息
type SerialPortInfo struct {
	Name        string
	Description string
	VID         string
	PID         string
	IsUSB       bool
}

var (
	getPortsList         = serial.GetPortsList
	getDetailedPortsList = enumerator.GetDetailedPortsList
)

// GetAvailableSerialPorts 获取可用的串口详细信息
func GetAvailableSerialPorts() ([]SerialPortInfo, error) {
	ports, err := getDetailedPortsList()
	if err != nil {
		return nil, err
	}

	var result []SerialPortInfo
	for _, port := range ports {
		info := SerialPortInfo{
			Name:        port.Name,
			Description: port.Product,
			VID:         port.VID,
			PID:         port.PID,
			IsUSB:       port.IsUSB,
		}
		result = append(result, info)
	}

	return result, nil
}

// ListSerialPorts returns the system-visible serial device identifiers in the order the OS
// reports them. Enumeration failures are logged and yield an empty list.
func ListSerialPorts() []string {
	ports, err := getPortsList()
	if err != nil {
		logger.Warn(fmt.Sprintf("Failed to list serial ports: %v", err))
		return []string{}
	}
	if ports == nil {
		ports = []string{}
	}

	logger.Debug(fmt.Sprintf("Found %d serial port(s): %v", len(ports), ports))
	if details, err := GetAvailableSerialPorts(); err == nil {
		for _, d := range details {
			if d.IsUSB {
				logger.Debug(fmt.Sprintf("  %s: USB VID=%s PID=%s %s", d.Name, d.VID, d.PID, d.Description))
			}
		}
	}
	return ports
}
