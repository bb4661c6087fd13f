package sqlinline

// QNotifyRequestQueued wakes any listening worker after a batch of requests
// has been committed. The payload is the request id; workers treat it as a
// hint and still claim through the usual query.
const QNotifyRequestQueued = `--sql 80b7b4de-1a56-4546-aeca-747a639645e1
select pg_notify('generation_requests', $1::text);
`
