package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/bluff/internal/client"
	"github.com/palemoky/bluff/internal/config"
	"github.com/palemoky/bluff/internal/logger"
	"github.com/palemoky/bluff/internal/protocol/codec"
	"github.com/palemoky/bluff/internal/ui/model"
)

type options struct {
	server   string
	codec    string
	userID   string
	room     string
	token    string
	logLevel string
	logFile  string
}

func main() {
	var opts options
	flag.StringVar(&opts.server, "server", "localhost:3001", "服务器地址")
	flag.StringVar(&opts.codec, "codec", codec.NameJSON, "编解码器 (json/protobuf)")
	flag.StringVar(&opts.userID, "user", "", "用户 ID，为空时自动生成")
	flag.StringVar(&opts.room, "room", "", "断线重连的房间号")
	flag.StringVar(&opts.token, "token", "", "断线重连凭证")
	flag.StringVar(&opts.logLevel, "log-level", "error", "日志级别")
	flag.StringVar(&opts.logFile, "log-file", "", "日志文件，为空时不记录日志")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "启动客户端时出错: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	if (opts.room == "") != (opts.token == "") {
		return errors.New("-room 和 -token 需要同时指定")
	}

	// 终端界面占用标准输出，未指定日志文件时不输出日志
	log, closeLog := zap.NewNop(), func() {}
	if opts.logFile != "" {
		var err error
		log, closeLog, err = logger.New(config.LogConfig{Level: opts.logLevel, File: opts.logFile})
		if err != nil {
			return fmt.Errorf("初始化日志失败: %w", err)
		}
	}
	defer closeLog()

	c, err := codec.New(opts.codec)
	if err != nil {
		return err
	}

	if opts.userID == "" {
		opts.userID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cl := client.NewClient(fmt.Sprintf("ws://%s/ws", opts.server), client.WithCodec(c), client.WithLogger(log))
	if err := cl.Connect(ctx); err != nil {
		return fmt.Errorf("连接服务器失败: %w", err)
	}
	defer cl.Close()
	cl.StartHeartbeat(ctx)

	log.Info("🃏 已连接服务器", zap.String("server", opts.server), zap.String("user", opts.userID))

	if opts.room != "" {
		if err := cl.Reconnect(opts.room, opts.userID, opts.token); err != nil {
			return fmt.Errorf("发送重连请求失败: %w", err)
		}
	}

	p := tea.NewProgram(model.New(cl, cl.State, opts.userID), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
