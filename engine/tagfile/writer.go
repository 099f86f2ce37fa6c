// Package tagfile writes resolved metadata into audio containers and
// renames files to match their identified track.
package tagfile

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/go-flac"
	"go.senan.xyz/taglib"

	"github.com/dvalderas/playtag/engine"
)

// Writer is the only component that touches audio files. MP3 gets ID3v2.3
// frames, Opus gets Vorbis comments with a base64 METADATA_BLOCK_PICTURE
// for cover art.
type Writer struct {
	Logger engine.Logger
}

func New(log engine.Logger) *Writer {
	return &Writer{Logger: log}
}

var forbiddenFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// Write stores tags into the file at path and, when the track identity came
// from a real source, renames the file to the resolved title. It returns the
// file's final path, which is the original path whenever no rename applied.
func (w *Writer) Write(path string, tags *engine.TrackTags) (string, error) {
	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		err = w.writeMP3(path, tags)
	case ".opus", ".ogg":
		err = w.writeOpus(path, tags)
	default:
		return path, fmt.Errorf("tagfile: unsupported container %q", ext)
	}
	if err != nil {
		return path, err
	}
	w.Logger.Debug("tags written", "path", path, "artist", tags.Artist, "title", tags.Title)

	if !tags.SourceFound {
		// A placeholder identity is not worth destroying the original
		// file name over.
		return path, nil
	}
	return w.rename(path, tags)
}

func (w *Writer) writeMP3(path string, tags *engine.TrackTags) error {
	file, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("tagfile: open mp3: %w", err)
	}
	defer file.Close()

	file.SetDefaultEncoding(id3v2.EncodingUTF8)
	file.SetTitle(tags.Title)
	file.SetArtist(tags.Artist)
	file.SetAlbum(tags.Album)
	file.SetGenre(tags.Genre)
	if tags.Year > 0 {
		file.AddTextFrame("TDRC", id3v2.EncodingUTF8, strconv.Itoa(tags.Year))
	}
	if tags.TrackNumber > 0 {
		file.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(tags.TrackNumber))
	}
	if tags.DiscNumber > 0 {
		pos := strconv.Itoa(tags.DiscNumber)
		if tags.DiscCount > 0 {
			pos += "/" + strconv.Itoa(tags.DiscCount)
		}
		file.AddTextFrame("TPOS", id3v2.EncodingUTF8, pos)
	}
	if tags.Lyrics != "" {
		file.AddUnsynchronisedLyricsFrame(id3v2.UnsynchronisedLyricsFrame{
			Encoding:          id3v2.EncodingUTF8,
			Language:          "eng",
			ContentDescriptor: "",
			Lyrics:            tags.Lyrics,
		})
	}
	if len(tags.Cover) > 0 {
		file.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    http.DetectContentType(tags.Cover),
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     tags.Cover,
		})
	}

	if err := file.Save(); err != nil {
		return fmt.Errorf("tagfile: save mp3: %w", err)
	}
	return nil
}

func (w *Writer) writeOpus(path string, tags *engine.TrackTags) error {
	props := map[string][]string{
		taglib.Title:  {tags.Title},
		taglib.Artist: {tags.Artist},
		taglib.Album:  {tags.Album},
		taglib.Genre:  {tags.Genre},
	}
	if tags.Year > 0 {
		props[taglib.Date] = []string{strconv.Itoa(tags.Year)}
	}
	if tags.TrackNumber > 0 {
		props[taglib.TrackNumber] = []string{strconv.Itoa(tags.TrackNumber)}
	}
	if tags.DiscNumber > 0 {
		props[taglib.DiscNumber] = []string{strconv.Itoa(tags.DiscNumber)}
	}
	if tags.DiscCount > 0 {
		props["DISCTOTAL"] = []string{strconv.Itoa(tags.DiscCount)}
	}
	if tags.Lyrics != "" {
		props["LYRICS"] = []string{tags.Lyrics}
	}
	if len(tags.Cover) > 0 {
		encoded, err := encodeCoverBlock(tags.Cover)
		if err != nil {
			w.Logger.Warn("cover block encoding failed, skipping art", "path", path, "error", err)
		} else {
			props["METADATA_BLOCK_PICTURE"] = []string{encoded}
		}
	}

	if err := taglib.WriteTags(path, props, 0); err != nil {
		return fmt.Errorf("tagfile: write opus: %w", err)
	}
	return nil
}

// encodeCoverBlock builds the base64 FLAC picture block Vorbis comments
// expect for embedded art.
func encodeCoverBlock(cover []byte) (string, error) {
	pic, err := flacpicture.NewFromImageData(flacpicture.PictureTypeFrontCover,
		"Front cover", cover, http.DetectContentType(cover))
	if err != nil {
		return "", err
	}
	var block flac.MetaDataBlock = pic.Marshal()
	return base64.StdEncoding.EncodeToString(block.Data), nil
}

func (w *Writer) rename(path string, tags *engine.TrackTags) (string, error) {
	name := sanitizeFileName(tags.Title)
	if name == "" {
		return path, nil
	}
	target := filepath.Join(filepath.Dir(path), name+filepath.Ext(path))
	if target == path {
		return path, nil
	}

	if strings.EqualFold(target, path) {
		// Case-only renames need an intermediate name on
		// case-insensitive filesystems.
		tmp := target + ".casefix"
		if err := os.Rename(path, tmp); err != nil {
			return path, fmt.Errorf("tagfile: rename: %w", err)
		}
		path = tmp
	} else if _, err := os.Stat(target); err == nil {
		// Same track resolved twice in one playlist; the fresh copy wins.
		w.Logger.Warn("overwriting duplicate track", "target", target)
		if err := os.Remove(target); err != nil {
			return path, fmt.Errorf("tagfile: remove duplicate: %w", err)
		}
	}

	if err := os.Rename(path, target); err != nil {
		return path, fmt.Errorf("tagfile: rename: %w", err)
	}
	w.Logger.Info("file renamed", "to", target)
	return target, nil
}

func sanitizeFileName(name string) string {
	cleaned := forbiddenFileChars.ReplaceAllString(name, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return strings.Trim(cleaned, " .")
}
