// Package retrieve pulls the registrar's query exports from an SFTP drop
// and keeps the local copies consistent: downloads land in an incoming
// directory and are promoted to the latest-queries directory only after
// the freshness check passes.
package retrieve

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig holds the connection settings for the registrar drop.
type SFTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	RemoteDir string
}

// Download copies the named remote files into destDir. The SSH dial runs
// in a goroutine so the context can bound connection time.
func Download(ctx context.Context, cfg SFTPConfig, names []string, destDir string) error {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return fmt.Errorf("sftp: missing host, user, or password")
	}
	if cfg.Port <= 0 {
		cfg.Port = 22
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         20 * time.Second,
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	type dialRes struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialRes, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialRes{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		return fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return fmt.Errorf("sftp: dial error: %w", r.err)
		}
		sshClient = r.client
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return fmt.Errorf("sftp: new client: %w", err)
	}
	defer client.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	for _, name := range names {
		if err := downloadOne(client, path.Join(cfg.RemoteDir, name), filepath.Join(destDir, name)); err != nil {
			return err
		}
	}
	return nil
}

func downloadOne(client *sftp.Client, remotePath, localPath string) error {
	src, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("sftp: open %s: %w", remotePath, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", localPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("sftp: copy %s: %w", remotePath, err)
	}

	// Preserve the remote modification time; the freshness check keys
	// off file dates.
	if info, err := src.Stat(); err == nil {
		_ = os.Chtimes(localPath, info.ModTime(), info.ModTime())
	}
	return nil
}
