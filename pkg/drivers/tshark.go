package drivers

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/melbahja/goph"
	"golang.org/x/crypto/ssh"

	"github.com/nerds-ufes/polka-perf/pkg/config"
	log "github.com/nerds-ufes/polka-perf/pkg/logging"
)

const tsharkBin = "tshark"

const sshRetry = 3

// tsharkArgs filters responses carrying http.time and prints two fields per frame.
func tsharkArgs(capture string) []string {
	return []string{
		"-r", capture,
		"-Y", "http.time",
		"-T", "fields",
		"-e", "frame.time_utc",
		"-e", "http.time",
	}
}

// Run will execute tshark against the capture, on the remote host when one is configured,
// and return a bytes.Buffer of the stdout.
func (t *tshark) Run(capture string) (bytes.Buffer, error) {
	if t.remote != nil {
		return t.runRemote(capture)
	}
	var stdout, stderr bytes.Buffer
	path, err := exec.LookPath(tsharkBin)
	if err != nil {
		return stdout, fmt.Errorf("%s not found in PATH, try --engine native: %w", tsharkBin, err)
	}
	if _, err := os.Stat(capture); err != nil {
		return stdout, fmt.Errorf("capture %s: %w", capture, err)
	}
	cmd := exec.Command(path, tsharkArgs(capture)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debugf("🔥 Running %s", cmd.String())
	if err := cmd.Run(); err != nil {
		return stdout, fmt.Errorf("%s failed on %s: %w: %s", tsharkBin, capture, err, strings.TrimSpace(stderr.String()))
	}
	if stderr.Len() > 0 {
		log.Debug(strings.TrimSpace(stderr.String()))
	}
	return stdout, nil
}

func (t *tshark) runRemote(capture string) (bytes.Buffer, error) {
	var stdout bytes.Buffer
	client, err := SSHConnect(t.remote)
	if err != nil {
		return stdout, err
	}
	defer client.Close()
	args := tsharkArgs(shellQuote(capture))
	cmd, err := client.Command(tsharkBin, args...)
	if err != nil {
		return stdout, fmt.Errorf("unable to prepare %s on %s: %w", tsharkBin, t.remote.Host, err)
	}
	log.Debugf("🔥 Running %s on %s", cmd.String(), t.remote.Host)
	out, err := cmd.Output()
	if err != nil {
		return stdout, fmt.Errorf("failed running %s on %s: %w", tsharkBin, t.remote.Host, err)
	}
	stdout.Write(out)
	return stdout, nil
}

// shellQuote wraps s in single quotes for the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func connect(config *goph.Config) (*goph.Client, error) {
	for i := 0; i < sshRetry; i++ {
		client, err := goph.NewConn(config)
		if err != nil {
			log.Debug("Waiting for ssh access to be available")
			log.Debug(err)
			time.Sleep(5 * time.Second)
			continue
		}
		return client, nil
	}
	return nil, fmt.Errorf("unable to connect via ssh after %d attempts", sshRetry)
}

// keyPath returns the configured private key, ~/.ssh/id_rsa by default.
func keyPath(r *config.Remote) (string, error) {
	if r.Key != "" {
		return r.Key, nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve users homedir: %w", err)
	}
	return filepath.Join(dir, ".ssh", "id_rsa"), nil
}

// SSHConnect sets up the ssh config, then attempts to connect to the capture host.
func SSHConnect(r *config.Remote) (*goph.Client, error) {
	key, err := keyPath(r)
	if err != nil {
		return nil, err
	}
	keyd, err := os.ReadFile(key)
	if err != nil {
		return nil, fmt.Errorf("unable to read key: %w", err)
	}
	auth, err := goph.RawKey(string(keyd), "")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve sshkey: %w", err)
	}
	user := r.User
	if user == "" {
		user = os.Getenv("USER")
	}
	log.Debugf("Attempting to connect with : %s@%s", user, r.Host)
	config := goph.Config{
		User:     user,
		Addr:     r.Host,
		Port:     r.Port,
		Auth:     auth,
		Callback: ssh.InsecureIgnoreHostKey(),
	}
	client, err := connect(&config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect via ssh: %w", err)
	}
	return client, nil
}
