package leadfile

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const ftpTimeout = 30 * time.Second

// downloadFTP retrieves an ftp:// URL into a temp file and returns its path
// plus a cleanup func that removes the file.
func downloadFTP(ctx context.Context, rawURL string) (string, func(), error) {
	host, path, err := parseFTPURL(rawURL)
	if err != nil {
		return "", nil, err
	}

	zap.L().Debug("leadfile: ftp download", zap.String("host", host), zap.String("path", path))

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(ftpTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		return "", nil, eris.Wrap(err, "leadfile: ftp dial")
	}
	defer conn.Quit()

	if err := conn.Login("anonymous", "anonymous@"); err != nil {
		return "", nil, eris.Wrap(err, "leadfile: ftp login")
	}

	resp, err := conn.Retr(path)
	if err != nil {
		return "", nil, eris.Wrap(err, "leadfile: ftp retrieve")
	}
	defer resp.Close()

	// Keep the remote extension so format detection still works.
	tmp, err := os.CreateTemp("", "leadfile-*"+filepath.Ext(path))
	if err != nil {
		return "", nil, eris.Wrap(err, "leadfile: create temp file")
	}
	if _, err := io.Copy(tmp, resp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, eris.Wrap(err, "leadfile: download")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, eris.Wrap(err, "leadfile: close temp file")
	}

	cleanup := func() { os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}

// parseFTPURL extracts host (with port) and path from an FTP URL.
func parseFTPURL(rawURL string) (host string, path string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "leadfile: parse ftp url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("leadfile: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	path = u.Path
	if path == "" {
		return "", "", eris.New("leadfile: empty path in ftp url")
	}

	return host, path, nil
}
