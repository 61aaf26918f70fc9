package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lobaro/udpsocket/socket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const maxSendSize = 1024

var rootCmd = &cobra.Command{
	Use:   "udpsock",
	Short: "Send and receive UDP datagrams",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lvl, _ := cmd.Flags().GetString("log-level")
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			return err
		}
		logrus.SetLevel(level)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the library version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "UdpSocket: %s\n", socket.GetVersion())
	},
}

var recvCmd = &cobra.Command{
	Use:   "recv",
	Short: "Bind to ip:port and print every datagram received",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := socket.DefaultConfig
		cfg.Role = socket.Receiver
		cfg.LocalIP, _ = cmd.Flags().GetString("ip")
		cfg.LocalPort, _ = cmd.Flags().GetInt("port")
		cfg.ReceiveTimeout, _ = cmd.Flags().GetDuration("timeout")
		size, _ := cmd.Flags().GetInt("size")
		if size <= 0 || size > socket.MaxDatagramSize {
			return fmt.Errorf("size must be in 1..%d", socket.MaxDatagramSize)
		}

		s, err := socket.Open(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		stop := interrupted()
		return receiveLoop(cmd, s, make([]byte, size), stop)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Periodically send random datagrams to ip:port",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := socket.DefaultConfig
		cfg.Role = socket.SenderOnly
		cfg.PeerIP, _ = cmd.Flags().GetString("ip")
		cfg.PeerPort, _ = cmd.Flags().GetInt("port")
		period, _ := cmd.Flags().GetDuration("period")
		size, _ := cmd.Flags().GetInt("size")
		count, _ := cmd.Flags().GetInt("count")
		if size < 0 || size > maxSendSize {
			return fmt.Errorf("size must be in 0..%d", maxSendSize)
		}

		s, err := socket.Open(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		stop := interrupted()
		return sendLoop(cmd, s, sendParams{period: period, size: size, count: count}, stop)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warning", "Log level (debug, info, warning, error)")

	recvCmd.Flags().String("ip", "127.0.0.1", "Host IP to bind to")
	recvCmd.Flags().Int("port", 5000, "Host UDP port")
	recvCmd.Flags().Duration("timeout", socket.DefaultConfig.ReceiveTimeout, "Wait data timeout (0 = forever)")
	recvCmd.Flags().Int("size", 1024, "Receive buffer size")

	sendCmd.Flags().String("ip", "127.0.0.1", "Destination IP")
	sendCmd.Flags().Int("port", 5000, "Destination UDP port")
	sendCmd.Flags().Duration("period", 100*time.Millisecond, "Sending data period")
	sendCmd.Flags().Int("size", 128, "Number of bytes to send [0-1024]")
	sendCmd.Flags().Int("count", 0, "Number of datagrams to send (0 = until interrupted)")

	rootCmd.AddCommand(versionCmd, recvCmd, sendCmd)
}

// interrupted is closed on SIGINT or SIGTERM.
func interrupted() <-chan struct{} {
	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		close(stop)
	}()
	return stop
}

func receiveLoop(cmd *cobra.Command, s socket.Conn, buf []byte, stop <-chan struct{}) error {
	out := cmd.OutOrStdout()
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		n, from, err := s.ReadData(buf)
		if socket.KindOf(err) == socket.KindTimeout {
			fmt.Fprintln(out, "No input data")
			continue
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d bytes read from %s\n", n, from)
	}
}

type sendParams struct {
	period time.Duration
	size   int
	count  int
}

func sendLoop(cmd *cobra.Command, s socket.Conn, p sendParams, stop <-chan struct{}) error {
	out := cmd.OutOrStdout()
	data := make([]byte, p.size)
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; p.count == 0 || i < p.count; i++ {
		start := time.Now()
		rnd.Read(data)

		n, err := s.SendData(data)
		if err != nil {
			logrus.WithError(err).Warn("Send failed")
		} else {
			fmt.Fprintf(out, "%d bytes sent\n", n)
		}

		if p.count != 0 && i == p.count-1 {
			break
		}
		// The time spent sending counts towards the period.
		wait := p.period - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-stop:
			return nil
		case <-time.After(wait):
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
