// run.go implements the one-shot collection container: create, start,
// wait, capture logs, remove. The container's exit code flows into the
// same classification path as a local collection run.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// workspaceMount is the path inside the container where the probed
// directory is bind-mounted. The collection command runs with this as
// its working directory, so relative test paths resolve the same way
// they do in a CI checkout.
const workspaceMount = "/workspace"

// RunOptions configures a collection run inside a container.
type RunOptions struct {
	// Image is the container image to run the collection in
	// (e.g., "python:3.12-slim").
	Image string

	// HostDir is the absolute host path of the directory to probe.
	// It is bind-mounted read-only at workspaceMount.
	HostDir string

	// Argv is the full collection command line (command + args).
	Argv []string

	// Pull forces an image pull before the run. Without it, the image
	// is pulled only when it is missing locally.
	Pull bool

	// Logf receives progress messages (image pull, container id).
	// May be nil.
	Logf func(format string, args ...interface{})
}

// RunCollection executes the collection command inside a fresh container
// and returns its exit code together with the combined container output.
//
// Infrastructure failures (daemon unreachable, image not pullable) are
// returned as CLIError with ExitEnvError. A container that starts and
// exits — with any status — is a successful run; its exit code is the
// caller's to classify.
func (c *Client) RunCollection(ctx context.Context, opts RunOptions) (exitCode int, output string, err error) {
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	if opts.Pull {
		if err := c.pullImage(ctx, opts.Image, logf); err != nil {
			return 0, "", err
		}
	}

	id, err := c.createCollectionContainer(ctx, opts)
	if cerrdefs.IsNotFound(err) && !opts.Pull {
		// The image is not available locally — pull it and retry once.
		logf("Image %q not found locally, pulling...", opts.Image)
		if pullErr := c.pullImage(ctx, opts.Image, logf); pullErr != nil {
			return 0, "", pullErr
		}
		id, err = c.createCollectionContainer(ctx, opts)
	}
	if err != nil {
		return 0, "", model.WrapCLIError(model.ExitEnvError,
			fmt.Sprintf("failed to create collection container from image %q", opts.Image), err)
	}
	logf("Created collection container %s", shortID(id))

	// Always clean up the container, even on error paths. Removal uses a
	// background context because ctx may already be cancelled by the time
	// the deferred call runs (e.g., after a timeout).
	defer func() {
		if rmErr := c.inner.ContainerRemove(context.Background(), id,
			container.RemoveOptions{Force: true}); rmErr != nil {
			logf("Warning: failed to remove container %s: %v", shortID(id), rmErr)
		}
	}()

	if err := c.inner.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return 0, "", model.WrapCLIError(model.ExitEnvError,
			fmt.Sprintf("failed to start collection container %s", shortID(id)), err)
	}

	// Wait for the container's main process to exit. WaitConditionNotRunning
	// resolves for containers that already exited, so there is no race with
	// fast collections.
	statusCh, errCh := c.inner.ContainerWait(ctx, id, container.WaitConditionNotRunning)
	select {
	case waitErr := <-errCh:
		if ctx.Err() != nil {
			return 0, "", model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("collection did not finish: %v", ctx.Err()), waitErr)
		}
		return 0, "", model.WrapCLIError(model.ExitEnvError,
			"failed waiting for collection container", waitErr)
	case status := <-statusCh:
		exitCode = int(status.StatusCode)
	}

	output, logErr := c.containerOutput(ctx, id)
	if logErr != nil {
		// The exit code is already known; missing logs degrade the
		// diagnostics but not the classification.
		logf("Warning: failed to read container logs: %v", logErr)
	}

	return exitCode, output, nil
}

// createCollectionContainer creates (but does not start) the one-shot
// container for the given options and returns its id.
func (c *Client) createCollectionContainer(ctx context.Context, opts RunOptions) (string, error) {
	resp, err := c.inner.ContainerCreate(ctx,
		&container.Config{
			Image:      opts.Image,
			Cmd:        opts.Argv,
			WorkingDir: workspaceMount,
		},
		&container.HostConfig{
			// Read-only bind: collection must not mutate the repository
			// (the probe's no-side-effects contract).
			Binds: []string{opts.HostDir + ":" + workspaceMount + ":ro"},
		},
		nil, nil, "")
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// pullImage pulls the image and drains the progress stream. The Docker
// API requires the response body to be read to completion for the pull
// to actually finish.
func (c *Client) pullImage(ctx context.Context, ref string, logf func(string, ...interface{})) error {
	logf("Pulling image %q...", ref)
	rc, err := c.inner.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(model.ExitEnvError,
			fmt.Sprintf("failed to pull image %q", ref), err)
	}
	defer func() { _ = rc.Close() }()

	if _, err := io.Copy(io.Discard, rc); err != nil {
		return model.WrapCLIError(model.ExitEnvError,
			fmt.Sprintf("image pull for %q did not complete", ref), err)
	}
	return nil
}

// containerOutput fetches the container's combined stdout/stderr.
// Docker multiplexes both streams over one connection for non-TTY
// containers; stdcopy demultiplexes them. Both are written to the same
// buffer to reproduce the interleaved CI-log view.
func (c *Client) containerOutput(ctx context.Context, id string) (string, error) {
	rc, err := c.inner.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return buf.String(), err
	}
	return buf.String(), nil
}

// shortID truncates a container id to the familiar 12-character form
// used by the docker CLI.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
