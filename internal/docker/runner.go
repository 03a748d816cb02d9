package docker

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/mount"
	"github.com/moby/moby/client"

	"github.com/signalnine/benchduel/internal/runner"
)

// WorkMount is where the host working directory appears inside the
// container. Tool paths are resolved relative to it.
const WorkMount = "/work"

// Executor runs tool commands inside a container built from Image, with
// WorkDir bind-mounted at WorkMount.
type Executor struct {
	Image       string
	WorkDir     string
	Env         []string
	CPULimit    float64
	MemoryLimit int64
}

var _ runner.Executor = (*Executor)(nil)

func (e *Executor) Execute(ctx context.Context, argv []string) (*runner.ExecResult, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	defer cli.Close()

	initTrue := true
	hostCfg := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: e.WorkDir,
				Target: WorkMount,
			},
		},
		Init: &initTrue,
	}
	if e.CPULimit > 0 {
		hostCfg.NanoCPUs = int64(e.CPULimit * 1e9)
	}
	if e.MemoryLimit > 0 {
		hostCfg.Memory = e.MemoryLimit
	}

	createResp, err := cli.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config: &container.Config{
			Image:      e.Image,
			Cmd:        argv,
			Env:        e.Env,
			WorkingDir: WorkMount,
			Labels:     map[string]string{"benchduel": "true"},
		},
		HostConfig: hostCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("creating container: %w", err)
	}
	containerID := createResp.ID
	defer func() {
		cli.ContainerRemove(context.Background(), containerID, client.ContainerRemoveOptions{Force: true})
	}()

	if _, err := cli.ContainerStart(ctx, containerID, client.ContainerStartOptions{}); err != nil {
		return nil, fmt.Errorf("starting container: %w", err)
	}

	waitResult := cli.ContainerWait(ctx, containerID, client.ContainerWaitOptions{
		Condition: container.WaitConditionNotRunning,
	})
	for {
		select {
		case err := <-waitResult.Error:
			if err == nil {
				// nil error means no error on this channel; wait for result
				continue
			}
			cli.ContainerKill(context.Background(), containerID, client.ContainerKillOptions{Signal: "SIGKILL"})
			if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("waiting for container: %w", err)
			}
			return &runner.ExecResult{
				ExitCode: runner.ExitCodeTimeout,
				TimedOut: true,
				Stderr:   containerStderr(cli, containerID),
			}, nil
		case status := <-waitResult.Result:
			res := &runner.ExecResult{ExitCode: int(status.StatusCode)}
			if res.ExitCode != 0 {
				res.Stderr = containerStderr(cli, containerID)
			}
			return res, nil
		}
	}
}

func containerStderr(cli *client.Client, containerID string) string {
	logReader, err := cli.ContainerLogs(context.Background(), containerID, client.ContainerLogsOptions{ShowStderr: true, Tail: "100"})
	if err != nil || logReader == nil {
		return ""
	}
	defer logReader.Close()
	logData, _ := io.ReadAll(logReader)
	return string(demux(logData))
}

// demux strips the 8-byte stream headers the daemon prefixes to each log
// frame of a non-TTY container. Input that is not framed is returned as is.
func demux(data []byte) []byte {
	var out []byte
	rest := data
	for len(rest) > 0 {
		if len(rest) < 8 || rest[0] > 2 || rest[1] != 0 || rest[2] != 0 || rest[3] != 0 {
			return data
		}
		size := int(binary.BigEndian.Uint32(rest[4:8]))
		if len(rest)-8 < size {
			return data
		}
		out = append(out, rest[8:8+size]...)
		rest = rest[8+size:]
	}
	return out
}
