// Package resolve maps a request's logical path onto a file below a
// configured root directory using a per-route template.
//
// A template is a "/"-separated list of segments. Each segment is either a
// literal or one of the recognised placeholders:
//
//	:namespace                  the route namespace
//	:privatepath, :private_path the route private path (namespace + action)
//	:actionname, :action_name   the action name
//	:args, *                    all positional arguments, spliced in order
//
// A template starting with "/" is absolute and is joined directly under
// the root. Any other template is relative and is joined under the
// route's own private path:
//
//	res, err := resolve.New("/srv/www")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result := res.Resolve(ctx, resolve.Route{Template: resolve.ParseTemplate("file.txt")},
//	    resolve.Request{PrivatePath: "/basic/relative_path"})
//	// result.Path == "/srv/www/basic/relative_path/file.txt" when the file exists
//
// # Matching
//
// Resolve never returns an error. A request either matches (the candidate
// is an existing regular file) or misses. Positional arguments equal to
// ".." miss before any path is built, and joined candidates that leave
// the root miss as well. A miss lets the host router try other routes.
//
// Resolution is a pure function of the route configuration, the request
// facts and the filesystem state. A Resolver holds no mutable state and is
// safe for concurrent use.
package resolve
