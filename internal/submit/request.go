package submit

import (
	"fmt"
	"strings"
)

// PayloadEncoder packages a local filesystem path (a jar, a Python file, a
// directory of app resources) into the base64 tar+gzip blob the driver's
// submission server expects for an Uploaded AppResource.
type PayloadEncoder func(path string) (string, error)

// classifyAppResource inspects a main-resource URI's scheme and returns the
// AppResource tagged union it maps to:
//
//	no scheme, or "file://"  -> Uploaded (packaged and base64-encoded)
//	"local://"               -> ContainerLocal (path passed through as-is)
//	any other scheme         -> Remote (passed through, fetched by driver)
func classifyAppResource(uri string, encode PayloadEncoder) (AppResource, error) {
	scheme, rest, hasScheme := strings.Cut(uri, "://")

	switch {
	case !hasScheme, scheme == "file":
		path := uri
		if hasScheme {
			path = rest
		}
		blob, err := encode(path)
		if err != nil {
			return AppResource{}, fmt.Errorf("failed to encode app resource %q: %w", path, err)
		}
		return AppResource{Kind: AppResourceUploaded, URI: path, EncodedPayload: blob}, nil

	case scheme == "local":
		return AppResource{Kind: AppResourceContainerLocal, URI: rest}, nil

	default:
		return AppResource{Kind: AppResourceRemote, URI: uri}, nil
	}
}

// PayloadListEncoder packages a list of local filesystem paths (the --files
// or --jars flags) into a single base64 tar+gzip blob bundled alongside a
// submission.
type PayloadListEncoder func(paths []string) (string, error)

// SubmissionRequestBuilder assembles the SubmissionRequest posted to the
// driver once it is reachable.
type SubmissionRequestBuilder struct {
	Encode     PayloadEncoder
	EncodeList PayloadListEncoder
}

// Build classifies mainResourceURI, encodes any local files/jars into
// filesBlob/jarsBlob, and merges the submission secret, application
// arguments, and properties into a SubmissionRequest.
func (b SubmissionRequestBuilder) Build(appID, appName, mainClass, mainResourceURI string, appArgs, localFiles, localJars []string, properties, environment map[string]string, submissionSecret string) (SubmissionRequest, error) {
	resource, err := classifyAppResource(mainResourceURI, b.Encode)
	if err != nil {
		return SubmissionRequest{}, err
	}

	filesBlob, err := b.encodeList(localFiles)
	if err != nil {
		return SubmissionRequest{}, fmt.Errorf("failed to encode local files: %w", err)
	}
	jarsBlob, err := b.encodeList(localJars)
	if err != nil {
		return SubmissionRequest{}, fmt.Errorf("failed to encode local jars: %w", err)
	}

	return SubmissionRequest{
		AppID:           appID,
		AppName:         appName,
		MainClass:       mainClass,
		AppResource:     resource,
		AppArgs:         appArgs,
		SparkProperties: properties,
		Environment:     environment,
		Secret:          submissionSecret,
		FilesBlob:       filesBlob,
		JarsBlob:        jarsBlob,
	}, nil
}

// encodeList returns an empty blob for an empty path list without invoking
// EncodeList, so callers that never set it (and never pass --files/--jars)
// incur no cost.
func (b SubmissionRequestBuilder) encodeList(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	if b.EncodeList == nil {
		return "", fmt.Errorf("no payload list encoder configured")
	}
	return b.EncodeList(paths)
}
