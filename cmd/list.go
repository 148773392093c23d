/*
Copyright © 2025 seeacloud
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/evertras/bubble-table/table"
	serialport "github.com/seeacloud/node-serialport"
	"github.com/seeacloud/node-serialport/internal/tui/styles"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List all available serial ports on the system.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Virtual terminals and pseudo-terminals are excluded from the listing.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := serialport.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		filteredPorts := filterPorts(ports, filterType)

		if len(filteredPorts) == 0 {
			if filterType != "" {
				fmt.Printf("No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Println("No serial ports found")
			}
			return
		}

		if tableFormat {
			renderTable(filteredPorts)
		} else {
			renderSimple(filteredPorts)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, standard, arm, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(ports []string, filterType string) []string {
	if filterType == "" || filterType == "all" {
		return ports
	}

	var filtered []string
	for _, port := range ports {
		info, err := serialport.GetPortInfo(port)
		if err != nil {
			continue
		}

		name := strings.ToLower(info.Name)
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, port)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, port)
			}
		case "arm":
			if strings.HasPrefix(name, "ttyama") {
				filtered = append(filtered, port)
			}
		}
	}
	return filtered
}

// Column keys for the styled port table.
const (
	columnKeyPort   = "port"
	columnKeyType   = "type"
	columnKeyDesc   = "description"
	columnKeyVIDPID = "vidpid"
	columnKeySerial = "serial"
)

// renderTable renders the port list in a styled table, including USB
// metadata for the ports that have it.
func renderTable(ports []string) {
	fmt.Printf("Found %d serial port(s):\n\n", len(ports))

	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 14),
		table.NewColumn(columnKeyType, "Type", 14),
		table.NewColumn(columnKeyDesc, "Description", 26),
		table.NewColumn(columnKeyVIDPID, "VID:PID", 10),
		table.NewColumn(columnKeySerial, "Serial", 16),
	}

	rows := make([]table.Row, 0, len(ports))
	for _, port := range ports {
		info, err := serialport.GetPortInfo(port)
		if err != nil {
			rows = append(rows, table.NewRow(table.RowData{
				columnKeyPort: port,
				columnKeyType: "Unknown",
				columnKeyDesc: fmt.Sprintf("Error: %v", err),
			}))
			continue
		}

		vidpid := ""
		if info.VendorID != "" && info.ProductID != "" {
			vidpid = info.VendorID + ":" + info.ProductID
		}

		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPort:   info.Name,
			columnKeyType:   getPortType(info.Name),
			columnKeyDesc:   info.Description,
			columnKeyVIDPID: vidpid,
			columnKeySerial: info.SerialNumber,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded().
		WithBaseStyle(styles.TableBaseStyle).
		HeaderStyle(styles.TableHeaderStyle)

	fmt.Println(t.View())
}

// renderSimple renders the port list in simple text format
func renderSimple(ports []string) {
	for _, port := range ports {
		fmt.Println(port)
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
