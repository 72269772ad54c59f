// Package nzb implements the synthetic NZB document that carries slskd
// addressing information through a SABnzbd-style add/import flow.
//
// Format version 1:
//
//	<nzb xmlns="http://www.newzbin.com/DTD/2003/nzb">
//	  <head>
//	    <meta type="title">Artist - Album</meta>            informational
//	    <meta type="x-tunarr-version">1</meta>              required
//	    <meta type="x-tunarr-peer">base64(peer)</meta>      required
//	  </head>
//	  <file poster=".." date=".." subject=".." path="base64(remote path)" size="bytes">
//	    <groups><group>alt.binaries.sounds.lossless</group></groups>
//	    <segments><segment bytes="size" number="1">id</segment></segments>
//	  </file>
//	  ...
//	</nzb>
//
// Peer identity and remote paths are standard base64 of their raw bytes, so any
// byte sequence (backslashes, quotes, non-ASCII, control characters) survives
// XML escaping exactly. File order is significant.
package nzb

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/BlieNuckel/tunarr/internal/models"
)

const (
	Namespace     = "http://www.newzbin.com/DTD/2003/nzb"
	FormatVersion = "1"

	doctype = `<!DOCTYPE nzb PUBLIC "-//newzBin//DTD NZB 1.1//EN" "http://www.newzbin.com/DTD/nzb/nzb-1.1.dtd">` + "\n"

	metaTitle   = "title"
	metaVersion = "x-tunarr-version"
	metaPeer    = "x-tunarr-peer"

	poster = "tunarr@slskd"
	group  = "alt.binaries.sounds.lossless"
)

// ErrMalformedDocument is returned for any document that cannot be decoded
var ErrMalformedDocument = errors.New("malformed nzb document")

// Metadata is the slskd addressing information carried by a document
type Metadata struct {
	PeerIdentity string
	Files        []models.ReleaseFile
}

type document struct {
	XMLName xml.Name `xml:"nzb"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	Head    head     `xml:"head"`
	Files   []file   `xml:"file"`
}

type head struct {
	Meta []meta `xml:"meta"`
}

type meta struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type file struct {
	Poster   string    `xml:"poster,attr"`
	Date     int64     `xml:"date,attr"`
	Subject  string    `xml:"subject,attr"`
	Path     string    `xml:"path,attr"`
	Size     string    `xml:"size,attr"`
	Groups   []string  `xml:"groups>group"`
	Segments []segment `xml:"segments>segment"`
}

type segment struct {
	Bytes     int64  `xml:"bytes,attr"`
	Number    int    `xml:"number,attr"`
	MessageID string `xml:",chardata"`
}

func encodeField(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func decodeField(s string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func baseName(remotePath string) string {
	return path.Base(strings.ReplaceAll(remotePath, `\`, "/"))
}

// Encode renders a synthetic NZB document for the given release
func Encode(title string, md Metadata) ([]byte, error) {
	doc := document{
		Xmlns: Namespace,
		Head: head{Meta: []meta{
			{Type: metaTitle, Value: title},
			{Type: metaVersion, Value: FormatVersion},
			{Type: metaPeer, Value: encodeField(md.PeerIdentity)},
		}},
		Files: make([]file, 0, len(md.Files)),
	}

	for i, f := range md.Files {
		doc.Files = append(doc.Files, file{
			Poster:  poster,
			Subject: fmt.Sprintf("%q yEnc (1/1)", baseName(f.Filename)),
			Path:    encodeField(f.Filename),
			Size:    strconv.FormatInt(f.Size, 10),
			Groups:  []string{group},
			Segments: []segment{{
				Bytes:     f.Size,
				Number:    1,
				MessageID: fmt.Sprintf("%d.%s@tunarr", i+1, FormatVersion),
			}},
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nzb: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString(doctype)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedDocument, fmt.Sprintf(format, args...))
}

// Decode parses a document produced by Encode. Any failure wraps ErrMalformedDocument.
func Decode(data []byte) (Metadata, error) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Metadata{}, malformed("%v", err)
	}

	values := make(map[string]string, len(doc.Head.Meta))
	for _, m := range doc.Head.Meta {
		values[m.Type] = m.Value
	}

	version, ok := values[metaVersion]
	if !ok {
		return Metadata{}, malformed("missing %s", metaVersion)
	}
	if strings.TrimSpace(version) != FormatVersion {
		return Metadata{}, malformed("unsupported version %q", version)
	}

	rawPeer, ok := values[metaPeer]
	if !ok {
		return Metadata{}, malformed("missing %s", metaPeer)
	}
	peer, err := decodeField(rawPeer)
	if err != nil {
		return Metadata{}, malformed("invalid peer identity: %v", err)
	}
	if peer == "" {
		return Metadata{}, malformed("empty peer identity")
	}

	md := Metadata{
		PeerIdentity: peer,
		Files:        make([]models.ReleaseFile, 0, len(doc.Files)),
	}
	for i, f := range doc.Files {
		filename, err := decodeField(f.Path)
		if err != nil {
			return Metadata{}, malformed("file %d: invalid path: %v", i, err)
		}
		if filename == "" {
			return Metadata{}, malformed("file %d: empty path", i)
		}
		size, err := strconv.ParseInt(strings.TrimSpace(f.Size), 10, 64)
		if err != nil || size < 0 {
			return Metadata{}, malformed("file %d: invalid size %q", i, f.Size)
		}
		md.Files = append(md.Files, models.ReleaseFile{Filename: filename, Size: size})
	}

	return md, nil
}

// Title returns the informational title of a document, or "" if it has none
func Title(data []byte) string {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return ""
	}
	for _, m := range doc.Head.Meta {
		if m.Type == metaTitle {
			return m.Value
		}
	}
	return ""
}
