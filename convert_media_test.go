package fileconv

import (
	"context"
	"errors"
	"net"
	"os"
	"os/exec"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeCodec is an in-memory codec engine. Exec "encodes" the file after -i
// into the last argument by prefixing it.
type fakeCodec struct {
	fs afero.Fs

	mu     sync.Mutex
	runs   [][]string
	fail   error
	block  bool
	closed bool
}

func newFakeCodec() *fakeCodec {
	return &fakeCodec{fs: afero.NewMemMapFs()}
}

func (f *fakeCodec) WriteFile(name string, data []byte) error {
	return afero.WriteFile(f.fs, name, data, 0o600)
}

func (f *fakeCodec) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(f.fs, name)
}

func (f *fakeCodec) DeleteFile(name string) error {
	return f.fs.Remove(name)
}

func (f *fakeCodec) Exec(ctx context.Context, args ...string) error {
	f.mu.Lock()
	f.runs = append(f.runs, args)
	fail, block := f.fail, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	if fail != nil {
		return fail
	}

	in := args[slices.Index(args, "-i")+1]
	data, err := f.ReadFile(in)
	if err != nil {
		return err
	}
	return f.WriteFile(args[len(args)-1], append([]byte("encoded:"), data...))
}

func (f *fakeCodec) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeCodec) workspace(t *testing.T) []string {
	t.Helper()
	entries, err := afero.ReadDir(f.fs, "/")
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func loaderFor(codec CodecEngine) CodecLoader {
	return func(context.Context) (CodecEngine, error) { return codec, nil }
}

func TestMediaConversion(t *testing.T) {
	defer goleak.VerifyNone(t)

	codec := newFakeCodec()
	e := New(WithCodecLoader(loaderFor(codec)))

	var progress []int
	res, err := e.RequestConversion(context.Background(), []byte("pcm"), "wav", MP3, func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	assert.Equal(t, "encoded:pcm", string(res.Data))
	assert.Equal(t, "audio/mpeg", res.MIMEType)
	assert.Equal(t, []int{10, 50, 75, 100}, progress)

	require.Len(t, codec.runs, 1)
	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error", "-y", "-i", "input.wav",
		"-vn", "-c:a", "libmp3lame", "-b:a", "192k", "output.mp3",
	}, codec.runs[0])
	assert.Empty(t, codec.workspace(t))

	require.NoError(t, e.Close())
	assert.True(t, codec.closed)
}

func TestMediaConversionFailureCleansUp(t *testing.T) {
	codec := newFakeCodec()
	codec.fail = errors.New("Invalid data found when processing input")
	e := New(WithCodecLoader(loaderFor(codec)))

	_, err := e.RequestConversion(context.Background(), []byte("junk"), MKV, MP4, nil)
	require.Error(t, err)

	info := Classify(err)
	assert.Equal(t, CategoryConversion, info.Category)
	assert.Equal(t, "Conversion to MP4 failed.", info.Message)
	assert.NotContains(t, err.Error(), "Invalid data found")
	assert.Empty(t, codec.workspace(t))
}

func TestMediaTimeout(t *testing.T) {
	codec := newFakeCodec()
	codec.block = true
	e := New(WithCodecLoader(loaderFor(codec)), WithTimeout(20*time.Millisecond))

	_, err := e.RequestConversion(context.Background(), []byte("x"), MP4, WEBM, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "Conversion timed out.", Classify(err).Message)
	assert.Empty(t, codec.workspace(t))
}

func TestCodecLoadedOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	var loads atomic.Int32
	codec := newFakeCodec()
	e := New(WithCodecLoader(func(context.Context) (CodecEngine, error) {
		loads.Add(1)
		time.Sleep(10 * time.Millisecond)
		return codec, nil
	}))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.RequestConversion(context.Background(), []byte("a"), OGG, FLAC, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), loads.Load())
	assert.Len(t, codec.runs, 8)
}

func TestCodecLoadFailureIsRetried(t *testing.T) {
	var loads atomic.Int32
	codec := newFakeCodec()
	e := New(WithCodecLoader(func(context.Context) (CodecEngine, error) {
		if loads.Add(1) == 1 {
			return nil, errors.New("codec assets unavailable")
		}
		return codec, nil
	}))

	_, err := e.RequestConversion(context.Background(), []byte("a"), AAC, M4A, nil)
	require.Error(t, err)
	var loadErr *CodecLoadError
	assert.True(t, errors.As(err, &loadErr))
	assert.Equal(t, CategoryConversion, Classify(err).Category)

	_, err = e.RequestConversion(context.Background(), []byte("a"), AAC, M4A, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads.Load())
}

func TestCodecLoaderReturnsNothing(t *testing.T) {
	e := New(WithCodecLoader(func(context.Context) (CodecEngine, error) {
		return nil, nil
	}))

	_, err := e.RequestConversion(context.Background(), []byte("a"), WAV, MP3, nil)
	require.Error(t, err)
	var loadErr *CodecLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, errNoCodec)
	require.NoError(t, e.Close())
}

func TestCodecLoadNetworkFailure(t *testing.T) {
	e := New(WithCodecLoader(func(context.Context) (CodecEngine, error) {
		return nil, &net.DNSError{Err: "no such host", Name: "codecs.example.com"}
	}))

	_, err := e.RequestConversion(context.Background(), []byte("a"), MP3, WAV, nil)
	require.Error(t, err)
	info := Classify(err)
	assert.Equal(t, CategoryNetwork, info.Category)
	assert.True(t, info.CanRetry)
}

func TestFFmpegLoaderMissingBinary(t *testing.T) {
	_, err := FFmpegLoader("fileconv-no-such-ffmpeg", noopLogger())(context.Background())
	require.Error(t, err)

	var loadErr *CodecLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}

func TestFFmpegEngineWorkspace(t *testing.T) {
	dir := t.TempDir()
	engine := &ffmpegEngine{
		dir:    dir,
		fs:     afero.NewBasePathFs(afero.NewOsFs(), dir),
		logger: noopLogger(),
	}

	require.NoError(t, engine.WriteFile("input.wav", []byte("data")))
	got, err := engine.ReadFile("input.wav")
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))

	ok, err := afero.Exists(afero.NewOsFs(), dir+"/input.wav")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, engine.DeleteFile("input.wav"))
	require.NoError(t, engine.Close())
	ok, err = afero.DirExists(afero.NewOsFs(), dir)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCodecArgs(t *testing.T) {
	assert.Equal(t, "-vn", codecArgs(WAV)[0])
	assert.NotContains(t, codecArgs(MP4), "-vn")
	assert.Contains(t, codecArgs(WEBM), "libvpx-vp9")
	assert.Contains(t, codecArgs(AVI), "mpeg4")
}
