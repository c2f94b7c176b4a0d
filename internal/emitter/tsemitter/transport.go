package tsemitter

// transportTS is the static runtime the generated client imports. It defines
// the transport contract (one send operation returning a two-branch result)
// and a small injection point so callers can plug in any implementation.
// The generator never fills in network behavior itself.
const transportTS = `// Transport contract for the generated API client.
// Provide an implementation with useTransport() before calling the client.

export interface FieldViolation {
  field: string;
  constraint: string;
  value: unknown;
}

export interface ApiError {
  code: string;
  info: string;
  message: string;
  violations: FieldViolation[];
}

export type ApiResult<T> =
  | { ok: true; data: T }
  | { ok: false; error: ApiError };

export interface RequestInfo {
  method: string;
  body?: unknown;
}

export interface RequestOptions {
  query?: Record<string, unknown>;
  headers?: Record<string, string>;
}

export type SendFn = (
  url: string,
  info: RequestInfo,
  options?: RequestOptions
) => Promise<ApiResult<unknown>>;

let transport: SendFn | undefined;

export function useTransport(fn: SendFn): void {
  transport = fn;
}

export function send<T>(
  url: string,
  info: RequestInfo,
  options?: RequestOptions
): Promise<ApiResult<T>> {
  if (!transport) {
    throw new Error(
      "no transport configured: call useTransport() before using the client"
    );
  }
  return transport(url, info, options) as Promise<ApiResult<T>>;
}
`

// RenderTransport returns the transport runtime file contents.
func RenderTransport() string { return transportTS }
