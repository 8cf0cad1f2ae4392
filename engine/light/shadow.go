package light

// ShadowMapResolution is the default width and height in texels of every light-space
// render target. It must be a power of two so the summed-area table and the min/max
// pyramid terminate after log2(resolution) steps.
const ShadowMapResolution = 1024

// DepthBiasSlopeScale is the polygon-offset slope factor applied while capturing.
const DepthBiasSlopeScale float32 = 4.0

// DepthBiasConstant is the polygon-offset constant (in depth units) applied while capturing.
const DepthBiasConstant int32 = 20

// DefaultShadowNear is the near plane of the light's perspective projection.
const DefaultShadowNear float32 = 1.0

// DefaultShadowFar is the far plane of the light's perspective projection.
const DefaultShadowFar float32 = 1000.0

// DefaultShadowFov is the light's vertical field of view in degrees.
const DefaultShadowFov float32 = 90.0

// DefaultReceiverBias is subtracted from a receiver's linear depth before it is compared
// against stored occluder depth to suppress self-shadowing.
const DefaultReceiverBias float32 = 0.002

// DefaultExponent is the warp constant c of exponential shadow maps (exp(c*z)).
// Kept low enough that summed-area sums of exp(c) over a full map stay finite in float32.
const DefaultExponent float32 = 40.0

// DefaultLightSize is the edge length of the square area light in world units.
const DefaultLightSize float32 = 32.0

// DefaultSampleCount is the number of point samples on the area light used by Monte-Carlo.
const DefaultSampleCount = 64

// CenterSample addresses the nominal center of the area light instead of a grid sample.
const CenterSample = -1
